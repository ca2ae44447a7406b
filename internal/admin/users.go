package admin

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/sirupsen/logrus"

	"ragflowctl/internal/models"
	"ragflowctl/internal/repo"
)

const confirmWord = "DELETE"

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func statusText(u models.User) string {
	if u.Valid() {
		return "valid"
	}
	return "invalid"
}

// ListUsers печатает таблицу пользователей и итог.
func (a *Admin) ListUsers(ctx context.Context) ([]models.User, error) {
	if !a.hasDB() {
		fmt.Fprintln(a.d.Out, "database is not configured")
		return nil, ErrNoDatabase
	}
	users, err := a.d.Store.List(ctx)
	if err != nil {
		a.d.Log.WithError(err).Error("list users failed")
		fmt.Fprintf(a.d.Out, "failed to list users: %v\n", err)
		return nil, err
	}
	if len(users) == 0 {
		fmt.Fprintln(a.d.Out, "no users found")
		return users, nil
	}

	line := strings.Repeat("-", 110)
	fmt.Fprintln(a.d.Out, line)
	tw := tabwriter.NewWriter(a.d.Out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNICKNAME\tEMAIL\tSTATUS\tSUPERUSER\tLOGIN CHANNEL")
	for _, u := range users {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			u.ID, u.Nickname, u.Email, statusText(u), yesNo(u.Superuser()), u.LoginChannel)
	}
	_ = tw.Flush()
	fmt.Fprintln(a.d.Out, line)
	fmt.Fprintf(a.d.Out, "total: %d user(s)\n", len(users))
	return users, nil
}

// UserDetails печатает сводку; несуществующий id → "not found" и repo.ErrUserNotFound.
func (a *Admin) UserDetails(ctx context.Context, id string) (*repo.UserDetails, error) {
	if !a.hasDB() {
		fmt.Fprintln(a.d.Out, "database is not configured")
		return nil, ErrNoDatabase
	}
	d, err := a.d.Store.Details(ctx, id)
	if errors.Is(err, repo.ErrUserNotFound) {
		fmt.Fprintf(a.d.Out, "user %s not found\n", id)
		return nil, err
	}
	if err != nil {
		a.d.Log.WithError(err).WithField("id", id).Error("user details failed")
		fmt.Fprintf(a.d.Out, "failed to load user %s: %v\n", id, err)
		return nil, err
	}
	a.printDetails(d)
	return d, nil
}

func (a *Admin) printDetails(d *repo.UserDetails) {
	w := a.d.Out
	u := d.User
	fmt.Fprintln(w, "\nUser:")
	fmt.Fprintf(w, "  id:            %s\n", u.ID)
	fmt.Fprintf(w, "  nickname:      %s\n", u.Nickname)
	fmt.Fprintf(w, "  email:         %s\n", u.Email)
	fmt.Fprintf(w, "  status:        %s\n", statusText(u))
	fmt.Fprintf(w, "  superuser:     %s\n", yesNo(u.Superuser()))
	fmt.Fprintf(w, "  login channel: %s\n", u.LoginChannel)
	fmt.Fprintf(w, "  last login:    %s\n", a.when(u.LastLoginTime))
	fmt.Fprintf(w, "  created:       %s\n", a.millis(u.CreateTime))
	fmt.Fprintf(w, "  updated:       %s\n", a.millis(u.UpdateTime))

	if t := d.Tenant; t != nil {
		fmt.Fprintln(w, "\nTenant:")
		fmt.Fprintf(w, "  id:        %s\n", t.ID)
		fmt.Fprintf(w, "  name:      %s\n", t.Name)
		fmt.Fprintf(w, "  llm:       %s\n", t.LLMID)
		fmt.Fprintf(w, "  embedding: %s\n", t.EmbdID)
	}
	if m := d.Membership; m != nil {
		fmt.Fprintln(w, "\nMembership:")
		fmt.Fprintf(w, "  id:         %s\n", m.ID)
		fmt.Fprintf(w, "  role:       %s\n", m.Role)
		fmt.Fprintf(w, "  invited by: %s\n", m.InvitedBy)
	}
	fmt.Fprintf(w, "\nLLM configs: %d\n", d.LLMCount)
	fmt.Fprintf(w, "Datasets:    %d\n", d.DatasetCount)
	fmt.Fprintf(w, "Agents:      %d\n", d.AgentCount)
}

func (a *Admin) when(t *time.Time) string {
	if t == nil {
		return "never"
	}
	return fmt.Sprintf("%s (%s)", t.Format(time.DateTime), humanize.RelTime(*t, a.d.Now(), "ago", "from now"))
}

func (a *Admin) millis(ms *int64) string {
	if ms == nil {
		return "-"
	}
	t := time.UnixMilli(*ms)
	return a.when(&t)
}

// DeleteUser удаляет пользователя со всеми строками, созданными регистрацией.
// confirm=true требует ввести DELETE. Возвращает true, если после удаления
// ни пользователя, ни тенанта не осталось; ошибка при этом может быть
// ненулевой, если упал какой-то из прочих шагов.
func (a *Admin) DeleteUser(ctx context.Context, id string, confirm bool) (bool, error) {
	d, err := a.UserDetails(ctx, id)
	if err != nil {
		return false, err
	}
	u := d.User

	if confirm {
		fmt.Fprintln(a.d.Out, "\nWARNING: this permanently deletes the user and everything registration created:")
		fmt.Fprintln(a.d.Out, "  user record, tenant, memberships, LLM configs")
		answer, err := a.prompt(fmt.Sprintf("\nType '%s' to delete %s (%s): ", confirmWord, u.Nickname, u.Email))
		if err != nil {
			return false, err
		}
		if answer != confirmWord {
			fmt.Fprintln(a.d.Out, "cancelled")
			return false, ErrCancelled
		}
	}

	fmt.Fprintln(a.d.Out, "deleting...")
	rep := a.d.Teardown.Run(ctx, id)
	for _, s := range rep.Steps {
		if s.Err != nil {
			fmt.Fprintf(a.d.Out, "  %-12s FAILED: %v\n", s.Name, s.Err)
			continue
		}
		fmt.Fprintf(a.d.Out, "  %-12s %d row(s)\n", s.Name, s.RowsAffected)
	}
	if err := rep.Err(); err != nil {
		a.d.Log.WithError(err).WithField("id", id).Warn("teardown finished with errors")
	}

	userLeft, tenantLeft, err := a.d.Store.Exists(ctx, id)
	if err != nil {
		fmt.Fprintf(a.d.Out, "failed to verify deletion: %v\n", err)
		return false, err
	}
	if userLeft || tenantLeft {
		fmt.Fprintln(a.d.Out, "deletion may be incomplete, please check the database")
		a.d.Log.WithFields(logrus.Fields{"id": id, "user": userLeft, "tenant": tenantLeft}).Warn("rows left after teardown")
		return false, errors.Join(ErrIncomplete, rep.Err())
	}
	fmt.Fprintf(a.d.Out, "user %s (%s) and related data deleted\n", u.Nickname, u.Email)
	a.d.Log.WithField("id", id).Info("user deleted")
	// пользователь и тенант удалены, но упавшие шаги всё равно сообщаются
	return true, rep.Err()
}
