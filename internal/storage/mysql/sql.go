package mysql

const upsertRoomSQL = `
INSERT INTO rooms
  (room_number, position, room_type, includes, price, image_name)
VALUES
  (?, ?, ?, ?, ?, ?)
ON DUPLICATE KEY UPDATE
  position   = VALUES(position),
  room_type  = VALUES(room_type),
  includes   = VALUES(includes),
  price      = VALUES(price),
  image_name = VALUES(image_name),
  updated_at = CURRENT_TIMESTAMP
`

const deleteBookingsSQL = `DELETE FROM room_bookings WHERE room_number = ?`

const insertBookingsPrefix = "INSERT INTO room_bookings\n  (room_number, seq, start_date, end_date)\nVALUES "

const nextPositionSQL = `SELECT COALESCE(MAX(position) + 1, 0) FROM rooms`

const positionOfSQL = `SELECT position FROM rooms WHERE room_number = ?`

// Rows not in the saved collection are dropped; bookings follow by cascade.
const deleteRoomsPrefix = "DELETE FROM rooms WHERE room_number NOT IN "

// -----------------------------------------------------------------------------
// READ QUERIES
// -----------------------------------------------------------------------------

const listRoomsSQL = `
SELECT room_number, room_type, includes, price, image_name
FROM rooms
ORDER BY position, room_number
`

// Bookings keep their insertion order through seq.
const listBookingsSQL = `
SELECT room_number, start_date, end_date
FROM room_bookings
ORDER BY room_number, seq
`
