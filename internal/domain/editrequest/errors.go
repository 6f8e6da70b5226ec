package editrequest

import "net/http"

// Error is a domain error with a stable code and the HTTP status the
// handler layer maps it to. Two errors match under errors.Is when their
// codes are equal, so callers can test for a kind without caring about
// the message.
type Error struct {
	Status  int
	Code    string
	Message string
}

func (e *Error) Error() string {
	return e.Code + ": " + e.Message
}

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

var (
	// ErrForbidden: a scope check failed. Returned before any mutation.
	ErrForbidden = &Error{http.StatusForbidden, "FORBIDDEN", "actor is not allowed to perform this operation"}

	// ErrRecordNotFound: the target record does not exist or is not visible
	// to the actor. The same error covers both cases.
	ErrRecordNotFound = &Error{http.StatusNotFound, "RECORD_NOT_FOUND", "target record not found"}

	// ErrRequestNotFound: no edit request with the given id.
	ErrRequestNotFound = &Error{http.StatusNotFound, "REQUEST_NOT_FOUND", "edit request not found"}

	// ErrEmptyChangeSet: a submission carried no proposed changes.
	ErrEmptyChangeSet = &Error{http.StatusUnprocessableEntity, "EMPTY_CHANGE_SET", "proposed changes must not be empty"}

	// ErrInvalidField: a proposed key is outside the record's editable schema.
	ErrInvalidField = &Error{http.StatusUnprocessableEntity, "INVALID_FIELD", "field is not editable"}

	// ErrAlreadyResolved: a transition was attempted on a terminal request.
	ErrAlreadyResolved = &Error{http.StatusConflict, "ALREADY_RESOLVED", "edit request is already resolved"}
)

// InvalidField returns an ErrInvalidField naming the offending key.
// errors.Is(err, ErrInvalidField) matches.
func InvalidField(field string) *Error {
	return &Error{http.StatusUnprocessableEntity, "INVALID_FIELD", "field is not editable: " + field}
}
