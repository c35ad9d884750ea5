package identitypb

import (
	"time"

	"google.golang.org/protobuf/types/known/structpb"
)

// Wire field names.
const (
	FieldID                 = "id"
	FieldEmail              = "email"
	FieldPassword           = "password"
	FieldNewPassword        = "new_password"
	FieldFullName           = "full_name"
	FieldAvatarKey          = "avatar_key"
	FieldMetadata           = "metadata"
	FieldIdentity           = "identity"
	FieldProvisioningToken  = "provisioning_token"
	FieldAccessToken        = "access_token"
	FieldRefreshToken       = "refresh_token"
	FieldExpiresAt          = "expires_at"
	FieldSecurityQuestion   = "security_question"
	FieldSecurityAnswerHash = "security_answer_hash"
	FieldLastLogin          = "last_login"
	FieldName               = "name"
	FieldArgs               = "args"
	FieldUserEmail          = "user_email"
	FieldAnswerHash         = "answer_hash"
	FieldKey                = "key"
	FieldURL                = "url"
)

// String returns the string field key of s, or "" when absent or not a string.
func String(s *structpb.Struct, key string) string {
	if s == nil {
		return ""
	}
	v, ok := s.GetFields()[key]
	if !ok {
		return ""
	}
	str, ok := v.GetKind().(*structpb.Value_StringValue)
	if !ok {
		return ""
	}
	return str.StringValue
}

// Struct returns the nested struct field key of s, or nil.
func Struct(s *structpb.Struct, key string) *structpb.Struct {
	if s == nil {
		return nil
	}
	v, ok := s.GetFields()[key]
	if !ok {
		return nil
	}
	return v.GetStructValue()
}

// Time parses an RFC 3339 string field. The zero time is returned when the
// field is absent or malformed.
func Time(s *structpb.Struct, key string) time.Time {
	raw := String(s, key)
	if raw == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}
	}
	return t
}

// FormatTime renders t for the wire.
func FormatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// StringMap converts a nested struct of string values to a map. Non-string
// values are skipped.
func StringMap(s *structpb.Struct) map[string]string {
	if s == nil {
		return nil
	}
	out := make(map[string]string, len(s.GetFields()))
	for k, v := range s.GetFields() {
		if str, ok := v.GetKind().(*structpb.Value_StringValue); ok {
			out[k] = str.StringValue
		}
	}
	return out
}

// NewStruct builds a message from plain Go values. Accepted value types are
// those of structpb.NewValue; nested map[string]string values are converted.
func NewStruct(fields map[string]any) (*structpb.Struct, error) {
	normalized := make(map[string]any, len(fields))
	for k, v := range fields {
		if m, ok := v.(map[string]string); ok {
			inner := make(map[string]any, len(m))
			for mk, mv := range m {
				inner[mk] = mv
			}
			v = inner
		}
		normalized[k] = v
	}
	return structpb.NewStruct(normalized)
}
