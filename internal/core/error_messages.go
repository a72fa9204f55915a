package core

// # Error Codes Reference
//
// This file maps technical errors to user-friendly messages with codes for
// support reference. When users hit an error, they can quote the code to
// support staff for faster diagnosis.
//
// # File Errors (FILE001-FILE099)
//
//	FILE001 - File too large: File exceeds the maximum upload size
//	          Action: Split the file into smaller chunks
//	          Patterns: "file too large", "request body too large"
//
//	FILE002 - Invalid CSV: File could not be parsed as CSV
//	          Action: Check quoting; quotes inside a field must be doubled
//	          Patterns: "failed to parse csv"
//
//	FILE004 - No file: No file was selected
//	          Action: Please select a CSV file to upload
//	          Patterns: "no file provided"
//
//	FILE005 - Empty file: The file has no data rows
//	          Action: Upload a CSV file with a header and at least one data row
//	          Patterns: "csv file is empty"
//
//	FILE006 - Read failure: The file could not be read
//	          Action: Please select the file again
//	          Patterns: "failed to read file"
//
//	FILE007 - Bad form: The upload form could not be read
//	          Action: Send the file as multipart form field "file"
//	          Patterns: "invalid multipart form"
//
// # Mapping Errors (VAL001-VAL099)
//
//	VAL001 - Input mapping missing: No input column was chosen
//	         Action: Select at least one column for the item input
//	         Patterns: "input column mapping is required"
//
//	VAL004 - Missing column: A mapped column is missing from the CSV
//	         Action: Check that every mapped column is present in your file
//	         Patterns: "missing required column"
//
//	VAL005 - Column not found: A row has no value for a mapped column
//	         Action: Make sure every row has a value for each mapped column
//	         Patterns: "column not found"
//
//	VAL006 - Invalid dataset: Dataset ID is not valid
//	         Action: Check the dataset ID in the request URL
//	         Patterns: "invalid dataset id"
//
//	VAL007 - Bad parameter: A request parameter is not valid
//	         Action: Check the request parameters and try again
//	         Patterns: "invalid query parameter"
//
// # Upload Errors (UPL001-UPL099)
//
//	UPL002 - System busy: Too many uploads in progress
//	         Action: Please wait a moment and try again
//	         Patterns: "too many concurrent uploads"
//
//	UPL004 - Request cancelled: Request was cancelled
//	         Action: Please try again
//	         Patterns: "context canceled"
//
//	UPL005 - Request timeout: Request timed out
//	         Action: Try uploading a smaller file or check your connection
//	         Patterns: "context deadline exceeded"
//
// # Database Errors (DB001-DB099)
//
//	DB001 - Duplicate key: An item with this ID already exists
//	        Patterns: "duplicate key", "unique constraint"
//
//	DB004 - Connection refused: Unable to connect to database
//	        Patterns: "connection refused"
//
//	DB006 - Timeout: Operation timed out
//	        Patterns: "timeout"
//
//	DB008 - Store unavailable: No item store is configured
//	        Patterns: "no item store configured"
//
// # Default Error (ERR000)
//
//	ERR000 - Unknown error: An unexpected error occurred
//	         Action: Please try again or contact support
//
// Patterns are matched case-insensitively with strings.Contains. The first
// matching pattern wins, so specific patterns come before general ones.

import (
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

type errorPattern struct {
	pattern string
	msg     UserMessage
}

// errorPatterns maps technical error patterns (case-insensitive) to user
// messages. Order matters: the first match wins.
var errorPatterns = []errorPattern{
	// File errors
	{
		pattern: "file too large",
		msg: UserMessage{
			Message: "File exceeds the maximum upload size",
			Action:  "Split the file into smaller chunks",
			Code:    "FILE001",
		},
	},
	{
		pattern: "request body too large",
		msg: UserMessage{
			Message: "File exceeds the maximum upload size",
			Action:  "Split the file into smaller chunks",
			Code:    "FILE001",
		},
	},
	{
		pattern: "failed to parse csv",
		msg: UserMessage{
			Message: "File could not be parsed as CSV",
			Action:  "Check quoting; quotes inside a field must be doubled",
			Code:    "FILE002",
		},
	},
	{
		pattern: "no file provided",
		msg: UserMessage{
			Message: "No file was selected",
			Action:  "Please select a CSV file to upload",
			Code:    "FILE004",
		},
	},
	{
		pattern: "csv file is empty",
		msg: UserMessage{
			Message: "The file has no data rows",
			Action:  "Upload a CSV file with a header and at least one data row",
			Code:    "FILE005",
		},
	},
	{
		pattern: "failed to read file",
		msg: UserMessage{
			Message: "The file could not be read",
			Action:  "Please select the file again",
			Code:    "FILE006",
		},
	},
	{
		pattern: "invalid multipart form",
		msg: UserMessage{
			Message: "The upload form could not be read",
			Action:  "Send the file as multipart form field \"file\"",
			Code:    "FILE007",
		},
	},

	// Mapping errors
	{
		pattern: "input column mapping is required",
		msg: UserMessage{
			Message: "No input column was chosen",
			Action:  "Select at least one column for the item input",
			Code:    "VAL001",
		},
	},
	{
		pattern: "missing required column",
		msg: UserMessage{
			Message: "A mapped column is missing from the CSV",
			Action:  "Check that every mapped column is present in your file",
			Code:    "VAL004",
		},
	},
	{
		pattern: "column not found",
		msg: UserMessage{
			Message: "A row has no value for a mapped column",
			Action:  "Make sure every row has a value for each mapped column",
			Code:    "VAL005",
		},
	},
	{
		pattern: "invalid dataset id",
		msg: UserMessage{
			Message: "Dataset ID is not valid",
			Action:  "Check the dataset ID in the request URL",
			Code:    "VAL006",
		},
	},
	{
		pattern: "invalid query parameter",
		msg: UserMessage{
			Message: "A request parameter is not valid",
			Action:  "Check the request parameters and try again",
			Code:    "VAL007",
		},
	},

	// Upload errors
	{
		pattern: "too many concurrent uploads",
		msg: UserMessage{
			Message: "System is busy processing other uploads",
			Action:  "Please wait a moment and try again",
			Code:    "UPL002",
		},
	},
	{
		pattern: "context canceled",
		msg: UserMessage{
			Message: "Request was cancelled",
			Action:  "Please try again",
			Code:    "UPL004",
		},
	},
	{
		pattern: "context deadline exceeded",
		msg: UserMessage{
			Message: "Request timed out",
			Action:  "Try uploading a smaller file or check your connection",
			Code:    "UPL005",
		},
	},

	// Database errors
	{
		pattern: "duplicate key",
		msg: UserMessage{
			Message: "An item with this ID already exists",
			Action:  "Retry the import to generate new item IDs",
			Code:    "DB001",
		},
	},
	{
		pattern: "unique constraint",
		msg: UserMessage{
			Message: "An item with this ID already exists",
			Action:  "Retry the import to generate new item IDs",
			Code:    "DB001",
		},
	},
	{
		pattern: "connection refused",
		msg: UserMessage{
			Message: "Unable to connect to database",
			Action:  "Please try again in a few moments",
			Code:    "DB004",
		},
	},
	{
		pattern: "timeout",
		msg: UserMessage{
			Message: "Operation timed out",
			Action:  "Try uploading a smaller file or try again later",
			Code:    "DB006",
		},
	},
	{
		pattern: "no item store configured",
		msg: UserMessage{
			Message: "Importing is not available on this server",
			Action:  "Ask an administrator to configure a database",
			Code:    "DB008",
		},
	},
}

// defaultMessage is returned when no pattern matches (ERR000).
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
// If no pattern matches, the ERR000 fallback is returned.
//
// Example:
//
//	msg := MapError(ErrEmptyCSV)
//	// msg.Code == "FILE005"
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	errStr := strings.ToLower(err.Error())

	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}

// FormatUserError creates a formatted error string for display.
// The format is: "Message (Code: XXX). Action"
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err matches a known pattern rather than the
// ERR000 fallback.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}
