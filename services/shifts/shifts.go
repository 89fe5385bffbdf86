package shifts

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/samber/mo"

	"shiftbot/clients/pocketbase"
	"shiftbot/models"
)

// MaxShiftDurationMinutes caps how long a single shift can be recorded for
const MaxShiftDurationMinutes = 360

var (
	// ErrNotLinked is returned when the user has not linked an auth key yet
	ErrNotLinked = errors.New("no pocketbase auth key is linked for this user")
	// ErrKeyMismatch is returned when an auth key belongs to a different Discord user
	ErrKeyMismatch = errors.New("auth key belongs to a different discord user")
	// ErrShiftAlreadyActive is returned when starting a shift while one is open
	ErrShiftAlreadyActive = errors.New("an active shift already exists")
	// ErrNoActiveShift is returned when ending a shift while none is open
	ErrNoActiveShift = errors.New("no active shift to end")
)

// ShiftSummary describes a shift that was just closed
type ShiftSummary struct {
	Shift           models.Shift
	StartTime       time.Time
	EndTime         time.Time
	DurationMinutes int
	Capped          bool
}

// Status describes a user's current shift situation
type Status struct {
	Active mo.Option[models.Shift]
	Latest mo.Option[models.Shift]
}

// PocketBaseAPI is the slice of the PocketBase client the service needs.
// Satisfied by *pocketbase.Client; mocked in tests.
type PocketBaseAPI interface {
	GetUserByDiscordID(ctx context.Context, authToken, discordUserID string) (*models.PocketBaseUser, error)
	GetActiveShift(ctx context.Context, authToken, userID string) (*models.Shift, error)
	GetLatestShift(ctx context.Context, authToken, userID string) (*models.Shift, error)
	CreateShift(ctx context.Context, authToken, userID string) (*models.Shift, error)
	CompleteShift(ctx context.Context, authToken, shiftID, endTime string, durationMinutes int) (*models.Shift, error)
}

// TokensStore is the token linkage persistence the service needs.
// Satisfied by *db.PostgresTokensRepository.
type TokensStore interface {
	SetToken(ctx context.Context, discordUserID, authToken string) (*models.PocketBaseToken, error)
	GetToken(ctx context.Context, discordUserID string) (*models.PocketBaseToken, error)
	ClearToken(ctx context.Context, discordUserID string) error
}

// Service implements the shift business logic consumed by the gateway bot
// deployment. The webhook surface defers to it rather than exposing it.
type Service struct {
	pocketbaseClient PocketBaseAPI
	tokensRepo       TokensStore
	now              func() time.Time
}

func NewService(pocketbaseClient PocketBaseAPI, tokensRepo TokensStore) *Service {
	return &Service{
		pocketbaseClient: pocketbaseClient,
		tokensRepo:       tokensRepo,
		now:              func() time.Time { return time.Now().UTC() },
	}
}

// Login validates an auth key against PocketBase, checks it belongs to the
// invoking Discord user, and stores the linkage.
func (s *Service) Login(ctx context.Context, discordUserID, authKey string) (*models.PocketBaseUser, error) {
	log.Printf("📋 Starting login for discord user %s", discordUserID)

	if discordUserID == "" {
		return nil, fmt.Errorf("discord_user_id cannot be empty")
	}
	if authKey == "" {
		return nil, fmt.Errorf("auth_key cannot be empty")
	}

	user, err := s.pocketbaseClient.GetUserByDiscordID(ctx, authKey, discordUserID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up pocketbase user: %w", err)
	}

	if user.DiscordUserID.String() != discordUserID {
		return nil, ErrKeyMismatch
	}

	if _, err := s.tokensRepo.SetToken(ctx, discordUserID, authKey); err != nil {
		return nil, fmt.Errorf("failed to store auth key linkage: %w", err)
	}

	log.Printf("📋 Completed successfully - linked discord user %s to pocketbase user %s", discordUserID, user.ID)
	return user, nil
}

// StartShift opens a new shift, rejecting the request if one is already active
func (s *Service) StartShift(ctx context.Context, discordUserID string) (*models.Shift, error) {
	log.Printf("📋 Starting shift for discord user %s", discordUserID)

	authToken, userID, err := s.resolveUser(ctx, discordUserID)
	if err != nil {
		return nil, err
	}

	active, err := s.pocketbaseClient.GetActiveShift(ctx, authToken, userID)
	if err != nil {
		return nil, s.wrapPocketBaseError(ctx, discordUserID, err)
	}
	if active != nil {
		return active, ErrShiftAlreadyActive
	}

	shift, err := s.pocketbaseClient.CreateShift(ctx, authToken, userID)
	if err != nil {
		return nil, s.wrapPocketBaseError(ctx, discordUserID, err)
	}

	log.Printf("📋 Completed successfully - started shift %s for discord user %s", shift.ID, discordUserID)
	return shift, nil
}

// EndShift closes the active shift, recording a duration capped at
// MaxShiftDurationMinutes
func (s *Service) EndShift(ctx context.Context, discordUserID string) (*ShiftSummary, error) {
	log.Printf("📋 Ending shift for discord user %s", discordUserID)

	authToken, userID, err := s.resolveUser(ctx, discordUserID)
	if err != nil {
		return nil, err
	}

	active, err := s.pocketbaseClient.GetActiveShift(ctx, authToken, userID)
	if err != nil {
		return nil, s.wrapPocketBaseError(ctx, discordUserID, err)
	}
	if active == nil {
		return nil, ErrNoActiveShift
	}

	endTime := s.now()
	startTime := endTime
	if active.StartTime != "" {
		startTime, err = ParseTimestamp(active.StartTime)
		if err != nil {
			return nil, err
		}
	}

	elapsed := minutesBetween(startTime, endTime)
	recorded := elapsed
	if recorded > MaxShiftDurationMinutes {
		recorded = MaxShiftDurationMinutes
	}

	completed, err := s.pocketbaseClient.CompleteShift(ctx, authToken, active.ID, FormatTimestamp(endTime), recorded)
	if err != nil {
		return nil, s.wrapPocketBaseError(ctx, discordUserID, err)
	}

	log.Printf("📋 Completed successfully - ended shift %s for discord user %s (%d minutes)", completed.ID, discordUserID, recorded)
	return &ShiftSummary{
		Shift:           *completed,
		StartTime:       startTime,
		EndTime:         endTime,
		DurationMinutes: recorded,
		Capped:          recorded < elapsed,
	}, nil
}

// ShiftStatus reports the user's active shift, or the most recent one on record
func (s *Service) ShiftStatus(ctx context.Context, discordUserID string) (*Status, error) {
	log.Printf("📋 Fetching shift status for discord user %s", discordUserID)

	authToken, userID, err := s.resolveUser(ctx, discordUserID)
	if err != nil {
		return nil, err
	}

	active, err := s.pocketbaseClient.GetActiveShift(ctx, authToken, userID)
	if err != nil {
		return nil, s.wrapPocketBaseError(ctx, discordUserID, err)
	}
	if active != nil {
		return &Status{Active: mo.Some(*active), Latest: mo.None[models.Shift]()}, nil
	}

	latest, err := s.pocketbaseClient.GetLatestShift(ctx, authToken, userID)
	if err != nil {
		return nil, s.wrapPocketBaseError(ctx, discordUserID, err)
	}
	if latest == nil {
		return &Status{Active: mo.None[models.Shift](), Latest: mo.None[models.Shift]()}, nil
	}

	return &Status{Active: mo.None[models.Shift](), Latest: mo.Some(*latest)}, nil
}

// resolveUser loads the linked auth token and resolves the PocketBase user ID
func (s *Service) resolveUser(ctx context.Context, discordUserID string) (authToken, userID string, err error) {
	if discordUserID == "" {
		return "", "", fmt.Errorf("discord_user_id cannot be empty")
	}

	token, err := s.tokensRepo.GetToken(ctx, discordUserID)
	if err != nil {
		return "", "", fmt.Errorf("failed to load auth key linkage: %w", err)
	}
	if token == nil {
		return "", "", ErrNotLinked
	}

	user, err := s.pocketbaseClient.GetUserByDiscordID(ctx, token.AuthToken, discordUserID)
	if err != nil {
		return "", "", s.wrapPocketBaseError(ctx, discordUserID, err)
	}
	if user.ID == "" {
		return "", "", fmt.Errorf("pocketbase did not return a user ID")
	}

	return token.AuthToken, user.ID, nil
}

// wrapPocketBaseError drops a stored auth key once PocketBase rejects it, so
// the user is prompted to link again instead of failing forever
func (s *Service) wrapPocketBaseError(ctx context.Context, discordUserID string, err error) error {
	if errors.Is(err, pocketbase.ErrAuthRejected) {
		if clearErr := s.tokensRepo.ClearToken(ctx, discordUserID); clearErr != nil {
			log.Printf("❌ Failed to clear rejected auth key for %s: %v", discordUserID, clearErr)
		}
		return fmt.Errorf("auth key was rejected and has been unlinked: %w", err)
	}
	return err
}

func minutesBetween(start, end time.Time) int {
	seconds := int(end.Sub(start).Seconds())
	if seconds < 0 {
		seconds = 0
	}
	minutes := seconds / 60
	if minutes < 1 {
		// A shift always records at least one minute
		return 1
	}
	return minutes
}

// ParseTimestamp parses PocketBase's "2006-01-02 15:04:05.000Z" timestamps
func ParseTimestamp(value string) (time.Time, error) {
	normalized := strings.Replace(value, " ", "T", 1)
	parsed, err := time.Parse(time.RFC3339, normalized)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse pocketbase timestamp %q: %w", value, err)
	}
	return parsed.UTC(), nil
}

// FormatTimestamp renders a time the way PocketBase expects it
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000Z")
}
