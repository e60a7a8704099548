package main

// Creates an admin account, or promotes an existing account with the same email.
// The password is only set for new accounts unless --reset-password is given.

import (
	"errors"
	"flag"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/deifrati/api/config"
	"github.com/deifrati/api/models"
	"github.com/deifrati/api/utils"
)

type adminRequest struct {
	Name          string
	Email         string
	Password      string
	ResetPassword bool
}

func (r adminRequest) validate() error {
	if strings.TrimSpace(r.Email) == "" || !strings.Contains(r.Email, "@") {
		return errors.New("a valid --email is required")
	}
	if len(r.Password) < utils.MinPasswordLen {
		return fmt.Errorf("--password must be at least %d characters", utils.MinPasswordLen)
	}
	return nil
}

// ensureAdmin returns the admin account and whether it was newly created.
func ensureAdmin(db *gorm.DB, r adminRequest) (*models.User, bool, error) {
	if err := r.validate(); err != nil {
		return nil, false, err
	}
	email := strings.ToLower(strings.TrimSpace(r.Email))

	var user models.User
	err := db.Where("email = ?", email).First(&user).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		hash, err := utils.HashPassword(r.Password)
		if err != nil {
			return nil, false, err
		}
		name := strings.TrimSpace(r.Name)
		if name == "" {
			name = "Admin"
		}
		user = models.User{Name: name, Email: email, Password: hash, Role: models.RoleAdmin}
		if err := db.Create(&user).Error; err != nil {
			return nil, false, fmt.Errorf("create user: %w", err)
		}
		return &user, true, nil
	case err != nil:
		return nil, false, fmt.Errorf("look up user: %w", err)
	}

	updates := map[string]interface{}{"role": models.RoleAdmin}
	if r.ResetPassword {
		hash, err := utils.HashPassword(r.Password)
		if err != nil {
			return nil, false, err
		}
		updates["password"] = hash
	}
	if err := db.Model(&user).Updates(updates).Error; err != nil {
		return nil, false, fmt.Errorf("promote user: %w", err)
	}
	user.Role = models.RoleAdmin
	return &user, false, nil
}

func main() {
	var r adminRequest
	flag.StringVar(&r.Name, "name", "Admin", "display name for a new account")
	flag.StringVar(&r.Email, "email", "", "account email")
	flag.StringVar(&r.Password, "password", "", "account password")
	flag.BoolVar(&r.ResetPassword, "reset-password", false, "also replace the password of an existing account")
	flag.Parse()

	cfg := config.Load()
	if err := utils.InitLogger(cfg.Log); err != nil {
		panic(err)
	}
	defer func() { _ = utils.Logger.Sync() }()

	if err := r.validate(); err != nil {
		utils.Sugar.Fatal(err)
	}

	user, created, err := ensureAdmin(config.InitDatabase(models.All()...), r)
	if err != nil {
		utils.Sugar.Fatalf("create admin: %v", err)
	}
	if created {
		utils.Sugar.Infof("Admin %s created (id %d)", user.Email, user.ID)
		return
	}
	utils.Sugar.Infof("User %s promoted to admin (id %d)", user.Email, user.ID)
}
