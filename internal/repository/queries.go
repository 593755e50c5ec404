package repository

const (
	insertHideEventSQL = `INSERT INTO hide_events (session_id, title, handle, source, hidden_at)
VALUES (?, ?, ?, ?, ?)`

	countHidesSQL = `SELECT COUNT(*) FROM hide_events`

	countHidesForSessionSQL = `SELECT COUNT(*) FROM hide_events WHERE session_id = ?`

	lastHideSQL = `SELECT id, session_id, title, handle, source, hidden_at
FROM hide_events
ORDER BY hidden_at DESC, id DESC
LIMIT 1`

	deleteOlderThanSQL = `DELETE FROM hide_events WHERE hidden_at < ?`
)
