package upstream

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/sipas-id/sipas-portal/internal/app/models"
	"github.com/sipas-id/sipas-portal/internal/app/roles"
)

// The backend's field names vary between Indonesian and English and
// responses are sometimes wrapped in a data envelope. Everything here
// checks the known shapes in a fixed precedence order; nothing accesses
// fields speculatively.

// flexID tolerates numeric and string ids.
type flexID string

func (f *flexID) UnmarshalJSON(b []byte) error {
	if len(b) == 0 || string(b) == "null" {
		*f = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = flexID(n.String())
	return nil
}

// flexTime tolerates RFC3339, date-only strings and unix seconds.
type flexTime time.Time

func (f *flexTime) UnmarshalJSON(b []byte) error {
	s := string(b)
	if s == "null" || s == `""` {
		*f = flexTime(time.Time{})
		return nil
	}
	if b[0] == '"' {
		var raw string
		if err := json.Unmarshal(b, &raw); err != nil {
			return err
		}
		for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"} {
			if t, err := time.Parse(layout, raw); err == nil {
				*f = flexTime(t)
				return nil
			}
		}
		*f = flexTime(time.Time{})
		return nil
	}
	if secs, err := strconv.ParseInt(s, 10, 64); err == nil {
		*f = flexTime(time.Unix(secs, 0))
	}
	return nil
}

type wireUser struct {
	ID          flexID   `json:"id"`
	NamaLengkap string   `json:"nama_lengkap"`
	Name        string   `json:"name"`
	Username    string   `json:"username"`
	Email       string   `json:"email"`
	Role        string   `json:"role"`
	Avatar      string   `json:"avatar"`
	CreatedAt   flexTime `json:"createdAt"`
	CreatedSnk  flexTime `json:"created_at"`
}

// toUser resolves the identity, or nil when no field yields one.
func (w *wireUser) toUser() *models.User {
	name := w.NamaLengkap
	if name == "" {
		name = w.Name
	}
	if name == "" {
		name = w.Username
	}
	if w.ID == "" && name == "" && w.Email == "" {
		return nil
	}
	created := time.Time(w.CreatedAt)
	if created.IsZero() {
		created = time.Time(w.CreatedSnk)
	}
	return &models.User{
		ID:        string(w.ID),
		Name:      name,
		Email:     w.Email,
		Role:      string(roles.Parse(w.Role)),
		Avatar:    w.Avatar,
		CreatedAt: created,
	}
}

type wireAuth struct {
	Data json.RawMessage `json:"data"`
	User json.RawMessage `json:"user"`

	Token            string `json:"token"`
	AccessSnake      string `json:"access_token"`
	AccessCamel      string `json:"accessToken"`
}

func (w *wireAuth) token() string {
	if w.Token != "" {
		return w.Token
	}
	if w.AccessSnake != "" {
		return w.AccessSnake
	}
	return w.AccessCamel
}

// ParseAuthResponse extracts a canonical (user, token) pair from a login
// or profile payload. Envelope-wrapped shapes win over flat ones. A nil
// user with a resolvable token is legal: the session starts token-only.
// Only when neither a user nor a token can be resolved is the payload
// malformed.
func ParseAuthResponse(raw []byte) (*models.User, string, error) {
	var outer wireAuth
	if err := json.Unmarshal(raw, &outer); err != nil {
		return nil, "", ErrMalformedResponse
	}

	token := outer.token()
	userRaw := outer.User

	if len(outer.Data) > 0 && string(outer.Data) != "null" {
		var inner wireAuth
		if err := json.Unmarshal(outer.Data, &inner); err == nil {
			if t := inner.token(); t != "" {
				token = t
			}
			if len(inner.User) > 0 && string(inner.User) != "null" {
				userRaw = inner.User
			} else if userRaw == nil {
				// The envelope itself may be the user object.
				userRaw = outer.Data
			}
		}
	}

	var user *models.User
	if len(userRaw) > 0 && string(userRaw) != "null" {
		var w wireUser
		if err := json.Unmarshal(userRaw, &w); err == nil {
			user = w.toUser()
		}
	}
	if user == nil {
		// Flat profile responses carry the identity at top level.
		var w wireUser
		if err := json.Unmarshal(raw, &w); err == nil {
			user = w.toUser()
		}
	}

	if user == nil && token == "" {
		return nil, "", ErrMalformedResponse
	}
	return user, token, nil
}

// decodeInto unwraps an optional {"data": ...} envelope before decoding
// into out.
func decodeInto(raw []byte, out any) error {
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(raw, &envelope); err == nil &&
		len(envelope.Data) > 0 && string(envelope.Data) != "null" {
		raw = envelope.Data
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return ErrMalformedResponse
	}
	return nil
}
