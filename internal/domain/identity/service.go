package identity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/medsys/medsys/internal/platform/auth"
	"github.com/medsys/medsys/internal/platform/db"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUsernameTaken      = errors.New("username already taken")
	ErrNoPatientProfile   = errors.New("no patient profile for user")
)

// PatientDirectory is the slice of the patient package this service needs:
// the 1:1 user-to-patient lookup for dashboard routing, and profile creation
// during signup. Wired via an adapter in main.
type PatientDirectory interface {
	ProfileIDByUser(ctx context.Context, userID uuid.UUID) (uuid.UUID, error)
	CreateProfile(ctx context.Context, p *PatientProfile) (uuid.UUID, error)
}

// PatientProfile carries the demographic fields collected at signup.
type PatientProfile struct {
	UserID            uuid.UUID
	FirstName         string
	LastName          string
	DateOfBirth       time.Time
	Gender            string
	BloodGroup        string
	Phone             string
	Email             string
	Address           string
	EmergencyContact  string
	EmergencyPhone    string
	InsuranceProvider string
	InsuranceID       string
}

type Service struct {
	users    UserRepository
	staff    StaffRepository
	patients PatientDirectory
	tokens   *auth.TokenIssuer
	tx       db.TxRunner
}

func NewService(users UserRepository, staff StaffRepository, patients PatientDirectory, tokens *auth.TokenIssuer, tx db.TxRunner) *Service {
	return &Service{users: users, staff: staff, patients: patients, tokens: tokens, tx: tx}
}

// Login verifies credentials, resolves the primary role, and returns a
// session with the role's dashboard destination.
func (s *Service) Login(ctx context.Context, username, password string) (*Session, error) {
	u, err := s.users.GetByUsername(ctx, username)
	if err != nil || !u.Active {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	memberships, err := s.users.Memberships(ctx, u.ID)
	if err != nil {
		return nil, fmt.Errorf("loading memberships: %w", err)
	}
	role := ResolveRole(u.IsAdmin, memberships)

	dest, err := s.LandingFor(ctx, role, u.ID)
	if err != nil {
		return nil, err
	}

	token, err := s.tokens.Issue(u.ID, u.Username, string(role))
	if err != nil {
		return nil, fmt.Errorf("issuing token: %w", err)
	}

	return &Session{Token: token, Role: role, Username: u.Username, Destination: dest}, nil
}

// LandingFor maps a resolved role to its dashboard destination. Patients
// land on their own record, looked up through the 1:1 user relation; a
// missing profile is an onboarding defect surfaced as ErrNoPatientProfile.
// The mapping is a pure function of role and user, so repeated calls in the
// same session yield the same destination.
func (s *Service) LandingFor(ctx context.Context, role Role, userID uuid.UUID) (string, error) {
	switch role {
	case RoleAdmin:
		return "/admin", nil
	case RoleDoctor:
		return "/doctor/dashboard", nil
	case RoleStaff:
		return "/staff/", nil
	case RoleInventoryHead:
		return "/inventory/", nil
	case RolePatient:
		pid, err := s.patients.ProfileIDByUser(ctx, userID)
		if err != nil {
			return "", ErrNoPatientProfile
		}
		return fmt.Sprintf("/patient/%s/", pid), nil
	default:
		return "/dashboard/", nil
	}
}

// SignupRequest is the self-registration payload: account credentials plus
// the patient demographic fields.
type SignupRequest struct {
	Username          string    `json:"username"`
	Password          string    `json:"password"`
	FirstName         string    `json:"first_name"`
	LastName          string    `json:"last_name"`
	DateOfBirth       time.Time `json:"date_of_birth"`
	Gender            string    `json:"gender"`
	BloodGroup        string    `json:"blood_group"`
	Phone             string    `json:"phone"`
	Email             string    `json:"email"`
	Address           string    `json:"address"`
	EmergencyContact  string    `json:"emergency_contact"`
	EmergencyPhone    string    `json:"emergency_phone"`
	InsuranceProvider string    `json:"insurance_provider"`
	InsuranceID       string    `json:"insurance_id"`
}

// Signup creates the user account, the Patients membership, and the patient
// profile in one transaction, then logs the new user in. A failure partway
// through leaves no orphaned rows.
func (s *Service) Signup(ctx context.Context, req SignupRequest) (*Session, error) {
	if req.Username == "" || req.Password == "" {
		return nil, fmt.Errorf("username and password are required")
	}
	if req.FirstName == "" || req.LastName == "" {
		return nil, fmt.Errorf("first_name and last_name are required")
	}
	if _, err := s.users.GetByUsername(ctx, req.Username); err == nil {
		return nil, ErrUsernameTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	u := &UserAccount{
		Username:     req.Username,
		PasswordHash: string(hash),
		Active:       true,
	}
	if req.Email != "" {
		u.Email = &req.Email
	}

	var patientID uuid.UUID
	err = s.tx.InTx(ctx, func(ctx context.Context) error {
		if err := s.users.Create(ctx, u); err != nil {
			return fmt.Errorf("creating user: %w", err)
		}
		if err := s.users.AddMembership(ctx, u.ID, RolePatient); err != nil {
			return fmt.Errorf("adding membership: %w", err)
		}
		patientID, err = s.patients.CreateProfile(ctx, &PatientProfile{
			UserID:            u.ID,
			FirstName:         req.FirstName,
			LastName:          req.LastName,
			DateOfBirth:       req.DateOfBirth,
			Gender:            req.Gender,
			BloodGroup:        req.BloodGroup,
			Phone:             req.Phone,
			Email:             req.Email,
			Address:           req.Address,
			EmergencyContact:  req.EmergencyContact,
			EmergencyPhone:    req.EmergencyPhone,
			InsuranceProvider: req.InsuranceProvider,
			InsuranceID:       req.InsuranceID,
		})
		if err != nil {
			return fmt.Errorf("creating patient profile: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	token, err := s.tokens.Issue(u.ID, u.Username, string(RolePatient))
	if err != nil {
		return nil, fmt.Errorf("issuing token: %w", err)
	}

	return &Session{
		Token:       token,
		Role:        RolePatient,
		Username:    u.Username,
		Destination: fmt.Sprintf("/patient/%s/", patientID),
	}, nil
}

// StaffSignupRequest registers a clinical staff account. Used by the seed
// command and administrative provisioning.
type StaffSignupRequest struct {
	Username    string    `json:"username"`
	Password    string    `json:"password"`
	FirstName   string    `json:"first_name"`
	LastName    string    `json:"last_name"`
	Email       string    `json:"email"`
	Phone       string    `json:"phone"`
	Specialty   string    `json:"specialty"`
	RoleTitle   string    `json:"role_title"`
	JoiningDate time.Time `json:"joining_date"`
	Membership  Role      `json:"membership"`
}

// RegisterStaff creates the user account, the requested role membership, and
// the staff profile in one transaction.
func (s *Service) RegisterStaff(ctx context.Context, req StaffSignupRequest) (*Staff, error) {
	if req.Username == "" || req.Password == "" {
		return nil, fmt.Errorf("username and password are required")
	}
	if req.Membership != RoleDoctor && req.Membership != RoleStaff && req.Membership != RoleInventoryHead {
		return nil, fmt.Errorf("invalid staff membership: %s", req.Membership)
	}
	if _, err := s.users.GetByUsername(ctx, req.Username); err == nil {
		return nil, ErrUsernameTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	u := &UserAccount{
		Username:     req.Username,
		PasswordHash: string(hash),
		Active:       true,
	}
	if req.Email != "" {
		u.Email = &req.Email
	}

	member := &Staff{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Email:       req.Email,
		RoleTitle:   req.RoleTitle,
		JoiningDate: req.JoiningDate,
		Active:      true,
	}
	if req.Phone != "" {
		member.Phone = &req.Phone
	}
	if req.Specialty != "" {
		member.Specialty = &req.Specialty
	}
	if member.JoiningDate.IsZero() {
		member.JoiningDate = time.Now().UTC()
	}

	err = s.tx.InTx(ctx, func(ctx context.Context) error {
		if err := s.users.Create(ctx, u); err != nil {
			return fmt.Errorf("creating user: %w", err)
		}
		if err := s.users.AddMembership(ctx, u.ID, req.Membership); err != nil {
			return fmt.Errorf("adding membership: %w", err)
		}
		member.UserID = u.ID
		if err := s.staff.Create(ctx, member); err != nil {
			return fmt.Errorf("creating staff profile: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return member, nil
}

// CreateAdmin provisions an administrator account. Used by the seed command.
func (s *Service) CreateAdmin(ctx context.Context, username, password string) (*UserAccount, error) {
	if username == "" || password == "" {
		return nil, fmt.Errorf("username and password are required")
	}
	if _, err := s.users.GetByUsername(ctx, username); err == nil {
		return nil, ErrUsernameTaken
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}
	u := &UserAccount{
		Username:     username,
		PasswordHash: string(hash),
		IsAdmin:      true,
		Active:       true,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, fmt.Errorf("creating admin: %w", err)
	}
	return u, nil
}

// StaffByUser returns the staff profile behind an authenticated user.
func (s *Service) StaffByUser(ctx context.Context, userID uuid.UUID) (*Staff, error) {
	return s.staff.GetByUserID(ctx, userID)
}

// ListStaff lists staff profiles, optionally restricted to active members.
func (s *Service) ListStaff(ctx context.Context, activeOnly bool, limit, offset int) ([]*Staff, int, error) {
	return s.staff.List(ctx, activeOnly, limit, offset)
}
