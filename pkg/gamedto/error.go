package gamedto

// ErrorCode classifies a rejected client intent. Every gate failure maps to
// exactly one code; the message text is rendered server-side.
type ErrorCode string

const (
	CodeUnauthenticated       ErrorCode = "UNAUTHENTICATED"
	CodeRoomNotFound          ErrorCode = "ROOM_NOT_FOUND"
	CodeRoomNotJoinable       ErrorCode = "ROOM_NOT_JOINABLE"
	CodeNotAParticipant       ErrorCode = "NOT_A_PARTICIPANT"
	CodeOutOfTurn             ErrorCode = "OUT_OF_TURN"
	CodeSequenceMismatch      ErrorCode = "SEQUENCE_MISMATCH"
	CodeInvalidPieceOwnership ErrorCode = "INVALID_PIECE_OWNERSHIP"
	CodeIllegalMove           ErrorCode = "ILLEGAL_MOVE"
	CodeImplausibleStats      ErrorCode = "IMPLAUSIBLE_STATS"
	CodeMalformedPayload      ErrorCode = "MALFORMED_PAYLOAD"
)
