package ptyhandler

// EncodeFrame builds the server→client PTY output frame:
// [len:u8][session_id_utf8][data]. len is the byte length of the
// session-id, which fits in one byte for the 128-bit textual form.
func EncodeFrame(sessionID string, data []byte) []byte {
	id := []byte(sessionID)
	out := make([]byte, 0, 1+len(id)+len(data))
	out = append(out, byte(len(id)))
	out = append(out, id...)
	out = append(out, data...)
	return out
}

// DecodeFrame parses a client→server binary frame that addresses a
// specific session: [len][session_id][data]. Returns ok=false if the
// buffer is too short to contain a valid prefix.
func DecodeFrame(frame []byte) (sessionID string, data []byte, ok bool) {
	if len(frame) < 1 {
		return "", nil, false
	}
	n := int(frame[0])
	if len(frame) < 1+n {
		return "", nil, false
	}
	return string(frame[1 : 1+n]), frame[1+n:], true
}
