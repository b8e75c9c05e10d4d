package directory

import "errors"

var (
	ErrPersonNotFound       = errors.New("person not found")
	ErrRelationshipNotFound = errors.New("relationship not found")
	ErrMediaNotFound        = errors.New("media not found")
	ErrStorageNotConfigured = errors.New("media object storage not configured")
	ErrInvalidRelationType  = errors.New("invalid relationship type")
	ErrInvalidMediaType     = errors.New("invalid media type")
	ErrFullNameRequired     = errors.New("full name is required")
	ErrMediaURLRequired     = errors.New("media url is required")
)
