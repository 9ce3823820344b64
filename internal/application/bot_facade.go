package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"support-duty-bot/internal/domain"
	"support-duty-bot/internal/usecase"

	"github.com/rs/zerolog"
)

// Sender identifies the person behind an incoming message.
type Sender struct {
	TelegramID int64
	Username   string
	FullName   string
}

// BotFacade composes usecases into high-level bot commands. Facade methods
// return user-facing strings so the Telegram adapter just forwards them to
// the chat. Handler-local errors (validation, permission, not found,
// conflict) are rendered as replies here; anything else propagates to the
// adapter's per-update boundary, which logs it and answers generically.
type BotFacade struct {
	EmployeeUC usecase.EmployeeUseCase
	DutyUC     usecase.DutyUseCase

	adminIDs map[int64]struct{}
	loc      *time.Location
	log      *zerolog.Logger
}

func NewBotFacade(
	employeeUC usecase.EmployeeUseCase,
	dutyUC usecase.DutyUseCase,
	adminIDs []int64,
	loc *time.Location,
	logger *zerolog.Logger,
) *BotFacade {
	m := make(map[int64]struct{}, len(adminIDs))
	for _, id := range adminIDs {
		m[id] = struct{}{}
	}
	if loc == nil {
		loc = time.UTC
	}
	return &BotFacade{
		EmployeeUC: employeeUC,
		DutyUC:     dutyUC,
		adminIDs:   m,
		loc:        loc,
		log:        logger,
	}
}

// HandleCommand parses and dispatches one message, returning the reply text.
// A non-nil error means an internal failure; the caller replies generically.
func (b *BotFacade) HandleCommand(ctx context.Context, sender Sender, text string) (string, error) {
	cmd, err := ParseCommand(text)
	if err != nil {
		return userMessage(err), nil
	}

	isAdmin, err := b.isAdmin(ctx, sender.TelegramID)
	if err != nil {
		return "", fmt.Errorf("authorize %s: %w", cmd.Verb(), err)
	}
	if adminOnly(cmd) && !isAdmin {
		return userMessage(domain.ErrPermissionDenied), nil
	}

	reply, err := b.dispatch(ctx, sender, cmd, isAdmin)
	if err != nil {
		if msg := userMessage(err); msg != "" {
			return msg, nil
		}
		return "", fmt.Errorf("handle %s: %w", cmd.Verb(), err)
	}
	return reply, nil
}

func (b *BotFacade) dispatch(ctx context.Context, sender Sender, cmd Command, isAdmin bool) (string, error) {
	switch c := cmd.(type) {
	case StartCommand:
		return b.HandleStart(ctx, sender)
	case HelpCommand:
		return b.HandleHelp(isAdmin), nil
	case DutyCommand:
		return b.HandleDuty(ctx)
	case MyDutiesCommand:
		return b.HandleMyDuties(ctx, sender.TelegramID)
	case EmployeesCommand:
		return b.HandleEmployees(ctx)
	case AddEmployeeCommand:
		return b.HandleAddEmployee(ctx, c.Username)
	case RemoveEmployeeCommand:
		return b.HandleRemoveEmployee(ctx, c.Username)
	case SetDutyCommand:
		return b.HandleSetDuty(ctx, c.Date, c.Username)
	case RemoveDutyCommand:
		return b.HandleRemoveDuty(ctx, c.Date)
	default:
		return "", fmt.Errorf("%w: unhandled command %T", domain.ErrInvalidArgument, cmd)
	}
}

// HandleStart registers or fetches the caller and returns a greeting.
func (b *BotFacade) HandleStart(ctx context.Context, sender Sender) (string, error) {
	emp, err := b.EmployeeUC.RegisterOrFetch(ctx, sender.TelegramID, sender.Username, sender.FullName)
	if err != nil {
		return "", fmt.Errorf("register/fetch employee: %w", err)
	}
	return fmt.Sprintf(
		"👋 Hi, %s!\n\nI manage the support team's duty roster.\nUse /help to see what I can do.",
		emp.FullName,
	), nil
}

// HandleHelp is a pure function of the caller's role.
func (b *BotFacade) HandleHelp(isAdmin bool) string {
	sb := strings.Builder{}
	sb.WriteString("📋 Available commands:\n\n")
	sb.WriteString("/start — start working with the bot\n")
	sb.WriteString("/help — show this message\n")
	sb.WriteString("/duty — who is on duty today\n")
	sb.WriteString("/myduties — my upcoming duties\n")
	if isAdmin {
		sb.WriteString("\nAdmin commands:\n")
		sb.WriteString("/employees — list active employees\n")
		sb.WriteString("/addemployee @username — add an employee to the roster\n")
		sb.WriteString("/removeemployee @username — remove an employee and their duties\n")
		sb.WriteString("/setduty YYYY-MM-DD @username — assign a duty\n")
		sb.WriteString("/removeduty YYYY-MM-DD — unassign a duty\n")
	} else {
		sb.WriteString("\nContact a bot administrator for roster changes.")
	}
	return sb.String()
}

func (b *BotFacade) HandleDuty(ctx context.Context) (string, error) {
	today := b.today()
	_, emp, err := b.DutyUC.DutyOn(ctx, today)
	if errors.Is(err, domain.ErrNotFound) {
		return fmt.Sprintf("Nobody is assigned for %s — unassigned.", today.Format("2006-01-02")), nil
	}
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("🛡 On duty today (%s): %s", today.Format("2006-01-02"), emp.DisplayName()), nil
}

func (b *BotFacade) HandleMyDuties(ctx context.Context, tgID int64) (string, error) {
	duties, err := b.DutyUC.UpcomingFor(ctx, tgID, b.today())
	if errors.Is(err, domain.ErrNotFound) {
		return "I don't know you yet — send /start first.", nil
	}
	if err != nil {
		return "", err
	}
	if len(duties) == 0 {
		return "You have no upcoming duties.", nil
	}
	sb := strings.Builder{}
	sb.WriteString("Your upcoming duties:\n")
	for _, d := range duties {
		sb.WriteString("• " + d.Date.Format("2006-01-02") + "\n")
	}
	return sb.String(), nil
}

func (b *BotFacade) HandleEmployees(ctx context.Context) (string, error) {
	employees, err := b.EmployeeUC.ListActive(ctx)
	if err != nil {
		return "", err
	}
	if len(employees) == 0 {
		return "The roster is empty. Add someone with /addemployee @username.", nil
	}
	sb := strings.Builder{}
	sb.WriteString("👥 Active employees:\n")
	for _, e := range employees {
		sb.WriteString(fmt.Sprintf("• %s (%s)\n", e.FullName, e.DisplayName()))
	}
	return sb.String(), nil
}

func (b *BotFacade) HandleAddEmployee(ctx context.Context, username string) (string, error) {
	emp, err := b.EmployeeUC.Activate(ctx, username)
	if errors.Is(err, domain.ErrNotFound) {
		return fmt.Sprintf("@%s has never talked to me — ask them to send /start first.", username), nil
	}
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("✅ %s is now on the roster.", emp.DisplayName()), nil
}

func (b *BotFacade) HandleRemoveEmployee(ctx context.Context, username string) (string, error) {
	emp, err := b.EmployeeUC.Remove(ctx, username)
	if errors.Is(err, domain.ErrNotFound) {
		return fmt.Sprintf("I don't know @%s.", username), nil
	}
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("🗑 %s removed along with their duties.", emp.DisplayName()), nil
}

func (b *BotFacade) HandleSetDuty(ctx context.Context, date time.Time, username string) (string, error) {
	duty, emp, err := b.DutyUC.SetDuty(ctx, date, username)
	if errors.Is(err, domain.ErrNotFound) {
		return fmt.Sprintf("@%s is not on the roster — add them with /addemployee first.", username), nil
	}
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("✅ %s is on duty on %s.", emp.DisplayName(), duty.Date.Format("2006-01-02")), nil
}

func (b *BotFacade) HandleRemoveDuty(ctx context.Context, date time.Time) (string, error) {
	removed, err := b.DutyUC.RemoveDuty(ctx, date)
	if err != nil {
		return "", err
	}
	if !removed {
		return fmt.Sprintf("Nothing to remove: %s was unassigned.", date.Format("2006-01-02")), nil
	}
	return fmt.Sprintf("🗑 Duty on %s removed.", date.Format("2006-01-02")), nil
}

// isAdmin prefers the persisted flag; ids without a row yet fall back to the
// configured allowlist so an admin can act before their first /start.
func (b *BotFacade) isAdmin(ctx context.Context, tgID int64) (bool, error) {
	emp, err := b.EmployeeUC.GetByTelegramID(ctx, tgID)
	if errors.Is(err, domain.ErrNotFound) {
		_, ok := b.adminIDs[tgID]
		return ok, nil
	}
	if err != nil {
		return false, err
	}
	return emp.IsAdmin, nil
}

func (b *BotFacade) today() time.Time {
	return time.Now().In(b.loc)
}

// userMessage maps handler-local errors to reply text. Empty string means
// the error is internal and must propagate.
func userMessage(err error) string {
	switch {
	case errors.Is(err, domain.ErrInvalidArgument):
		if msg := strings.TrimPrefix(err.Error(), domain.ErrInvalidArgument.Error()+": "); msg != err.Error() {
			return "⚠️ " + msg
		}
		return "⚠️ Invalid command."
	case errors.Is(err, domain.ErrPermissionDenied):
		return "🚫 This command is for administrators only."
	case errors.Is(err, domain.ErrConflict):
		return "⚠️ Someone changed this assignment at the same time. Please retry."
	default:
		return ""
	}
}

func adminOnly(cmd Command) bool {
	switch cmd.(type) {
	case EmployeesCommand, AddEmployeeCommand, RemoveEmployeeCommand, SetDutyCommand, RemoveDutyCommand:
		return true
	default:
		return false
	}
}
