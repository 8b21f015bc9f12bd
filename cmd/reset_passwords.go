package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/frahmantamala/employee-portal/internal/auth"
	userDatamodel "github.com/frahmantamala/employee-portal/internal/core/datamodel/user"
	"github.com/frahmantamala/employee-portal/internal/core/common/validation"
)

var (
	resetPassword string
	resetConfirm  bool
)

var resetPasswordsCmd = &cobra.Command{
	Use:   "reset-passwords",
	Short: "Reset every user's password to one value",
	Long:  `Operational tool: overwrites the password of every user with --password and prints a report. Requires --yes.`,
	Run: func(cmd *cobra.Command, args []string) {
		if !resetConfirm {
			log.Fatal("refusing to reset passwords without --yes")
		}

		cfg, err := loadConfig(".")
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		sqlxDB, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}
		defer sqlxDB.Close()

		db, err := initGorm(sqlxDB)
		if err != nil {
			log.Fatalf("failed to init gorm: %v", err)
		}

		if _, err := resetPasswords(cmd.Context(), db, resetPassword, cfg.Security.BCryptCost, os.Stdout); err != nil {
			log.Fatalf("reset failed: %v", err)
		}
	},
}

func init() {
	resetPasswordsCmd.Flags().StringVar(&resetPassword, "password", "", "new password for every user")
	resetPasswordsCmd.Flags().BoolVar(&resetConfirm, "yes", false, "confirm the reset")
	_ = resetPasswordsCmd.MarkFlagRequired("password")
}

// resetPasswords rehashes every user's password and clears the change timestamp,
// so nobody is held by the change cooldown afterwards.
func resetPasswords(ctx context.Context, db *gorm.DB, password string, bcryptCost int, out io.Writer) (int, error) {
	if err := validation.ValidatePassword("password", password); err != nil {
		return 0, err
	}

	var users []userDatamodel.User
	if err := db.WithContext(ctx).Order("id ASC").Find(&users).Error; err != nil {
		return 0, fmt.Errorf("list users: %w", err)
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tEMAIL\tNAME\tRESULT")

	reset := 0
	var errs []error
	for _, u := range users {
		hash, err := auth.HashPassword(password, bcryptCost)
		if err == nil {
			err = db.WithContext(ctx).Model(&userDatamodel.User{}).Where("id = ?", u.ID).Updates(map[string]interface{}{
				"password_hash":       hash,
				"password_changed_at": nil,
				"updated_at":          time.Now().UTC(),
			}).Error
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("user %d: %w", u.ID, err))
			fmt.Fprintf(tw, "%d\t%s\t%s\tFAILED: %v\n", u.ID, u.Email, u.Name, err)
			continue
		}
		reset++
		fmt.Fprintf(tw, "%d\t%s\t%s\tOK\n", u.ID, u.Email, u.Name)
	}
	fmt.Fprintf(tw, "\n%d of %d users reset\n", reset, len(users))

	if err := tw.Flush(); err != nil {
		return reset, err
	}
	return reset, errors.Join(errs...)
}
