package logging

// Standardized field names for structured logging.
const (
	FieldOperation   = "operation"
	FieldStatus      = "status"
	FieldError       = "error"
	FieldDuration    = "duration_ms"
	FieldCount       = "count"
	FieldCategory    = "category"
	FieldProvider    = "provider"
	FieldModel       = "model"
	FieldRequestID   = "request_id"
	FieldMethod      = "method"
	FieldPath        = "path"
	FieldTurns       = "turns"
	FieldPromptBytes = "prompt_bytes"
	FieldReplyBytes  = "reply_bytes"
	FieldInputFile   = "input_file"
	FieldOutputFile  = "output_file"
)
