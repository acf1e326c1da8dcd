package session

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"

	apperrors "github.com/jrsteele09/go-school-gateway/internal/errors"
	"github.com/jrsteele09/go-school-gateway/schools"
	"github.com/jrsteele09/go-school-gateway/users"
)

// Cookie payloads are JSON wrapped in unpadded base64url so they survive cookie
// value sanitisation. Everything read back is untrusted input.

func encodePayload(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("[session encodePayload] marshal: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(data), nil
}

func decodePayload(raw string, v any) error {
	data, err := base64.RawURLEncoding.DecodeString(raw)
	if err != nil {
		return apperrors.Wrapf(apperrors.ErrInvalidPayload, "base64: %s", err.Error())
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return apperrors.Wrapf(apperrors.ErrInvalidPayload, "json: %s", err.Error())
	}
	if dec.More() {
		return apperrors.Wrapf(apperrors.ErrInvalidPayload, "trailing data")
	}
	return nil
}

func decodeUser(raw string) (*users.User, error) {
	var u users.User
	if err := decodePayload(raw, &u); err != nil {
		return nil, err
	}
	if err := u.Validate(); err != nil {
		return nil, err
	}
	return &u, nil
}

func decodeSchool(raw string) (*schools.School, error) {
	var s schools.School
	if err := decodePayload(raw, &s); err != nil {
		return nil, err
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}
