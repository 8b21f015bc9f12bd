package portalclient

import (
	"encoding/json"
	"strconv"
)

// Persistent keys.
const (
	KeyToken            = "token"
	KeyUserType         = "userType"
	KeyUserEmail        = "userEmail"
	KeyUser             = "user"
	KeyRememberedEmail  = "rememberedEmail"
	KeySidebarCollapsed = "sidebarCollapsed"
)

// KeyAdminWelcomeShown lives in the session-scoped store only.
const KeyAdminWelcomeShown = "adminWelcomeShown"

type UserSnapshot struct {
	ID         int64   `json:"id"`
	Name       string  `json:"name"`
	Email      string  `json:"email"`
	Role       string  `json:"role"`
	Department string  `json:"department"`
	Position   string  `json:"position"`
	Avatar     *string `json:"avatar,omitempty"`
	SessionID  int64   `json:"session_id,omitempty"`
}

// IdentitySession is the client's cached view of who is logged in.
type IdentitySession struct {
	persistent Storage
	session    Storage
}

func NewIdentitySession(persistent, session Storage) *IdentitySession {
	if persistent == nil {
		persistent = NewMemoryStorage()
	}
	if session == nil {
		session = NewMemoryStorage()
	}
	return &IdentitySession{persistent: persistent, session: session}
}

func (s *IdentitySession) Token() string {
	v, _ := s.persistent.Get(KeyToken)
	return v
}

func (s *IdentitySession) UserType() string {
	v, _ := s.persistent.Get(KeyUserType)
	return v
}

func (s *IdentitySession) UserEmail() string {
	v, _ := s.persistent.Get(KeyUserEmail)
	return v
}

func (s *IdentitySession) IsAuthenticated() bool {
	return s.Token() != ""
}

func (s *IdentitySession) IsAdmin() bool {
	return s.UserType() == "admin"
}

// User returns the cached snapshot; a corrupt entry reads as absent.
func (s *IdentitySession) User() (*UserSnapshot, bool) {
	raw, ok := s.persistent.Get(KeyUser)
	if !ok || raw == "" {
		return nil, false
	}
	var u UserSnapshot
	if err := json.Unmarshal([]byte(raw), &u); err != nil {
		return nil, false
	}
	return &u, true
}

func (s *IdentitySession) RememberedEmail() string {
	v, _ := s.persistent.Get(KeyRememberedEmail)
	return v
}

func (s *IdentitySession) SidebarCollapsed() bool {
	v, _ := s.persistent.Get(KeySidebarCollapsed)
	collapsed, _ := strconv.ParseBool(v)
	return collapsed
}

func (s *IdentitySession) SetSidebarCollapsed(collapsed bool) error {
	return s.persistent.Set(KeySidebarCollapsed, strconv.FormatBool(collapsed))
}

func (s *IdentitySession) AdminWelcomeShown() bool {
	v, _ := s.session.Get(KeyAdminWelcomeShown)
	return v == "true"
}

func (s *IdentitySession) MarkAdminWelcomeShown() error {
	return s.session.Set(KeyAdminWelcomeShown, "true")
}

// Save stores a fresh login and resets the session-scoped flags.
func (s *IdentitySession) Save(token, userType, email string, user UserSnapshot) error {
	snapshot, err := json.Marshal(user)
	if err != nil {
		return err
	}
	if err := s.session.Delete(KeyAdminWelcomeShown); err != nil {
		return err
	}
	for key, value := range map[string]string{
		KeyToken:     token,
		KeyUserType:  userType,
		KeyUserEmail: email,
		KeyUser:      string(snapshot),
	} {
		if err := s.persistent.Set(key, value); err != nil {
			return err
		}
	}
	return nil
}

// Remember caches the email for the login form, or forgets it when remember is false.
func (s *IdentitySession) Remember(email string, remember bool) error {
	if remember {
		return s.persistent.Set(KeyRememberedEmail, email)
	}
	return s.persistent.Delete(KeyRememberedEmail)
}

// Clear drops every identity key. Remembered email and sidebar state survive.
func (s *IdentitySession) Clear() error {
	if err := s.persistent.Delete(KeyToken, KeyUserType, KeyUserEmail, KeyUser); err != nil {
		return err
	}
	return s.session.Delete(KeyAdminWelcomeShown)
}
