package sqlite

const (
	createUser = `
INSERT INTO users (username, password_hash, first_name, last_name, phone, joined_at, last_login_at)
VALUES (?, ?, ?, ?, ?, ?, ?)`

	getUserByUsername = `
SELECT username, password_hash, first_name, last_name, phone, joined_at, last_login_at
FROM users WHERE username = ?`

	listUsers = `
SELECT username, first_name, last_name, phone
FROM users ORDER BY username`

	updateLastLogin = `UPDATE users SET last_login_at = ? WHERE username = ?`

	userExists = `SELECT EXISTS (SELECT 1 FROM users WHERE username = ?)`

	createMessage = `
INSERT INTO messages (from_username, to_username, body, sent_at)
VALUES (?, ?, ?, ?)`

	selectMessage = `
SELECT m.id, m.from_username, m.to_username, m.body, m.sent_at, m.read_at,
       f.first_name, f.last_name, f.phone,
       t.first_name, t.last_name, t.phone
FROM messages m
JOIN users f ON f.username = m.from_username
JOIN users t ON t.username = m.to_username`

	getMessage   = selectMessage + ` WHERE m.id = ?`
	listTo       = selectMessage + ` WHERE m.to_username = ? ORDER BY m.id`
	listFrom     = selectMessage + ` WHERE m.from_username = ? ORDER BY m.id`
	markRead     = `UPDATE messages SET read_at = COALESCE(read_at, ?) WHERE id = ?`
	getReadState = `SELECT id, read_at FROM messages WHERE id = ?`

	revokeToken = `
INSERT INTO token_revocations (token_id, username, key_id, revoked_at)
VALUES (?, ?, ?, ?)
ON CONFLICT (token_id) DO NOTHING`

	isRevoked = `SELECT EXISTS (SELECT 1 FROM token_revocations WHERE token_id = ?)`
)
