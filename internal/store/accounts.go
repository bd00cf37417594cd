package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// NormalizeEmail lowercases and trims an email so that uniqueness and lookup
// agree on one canonical form.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Create inserts a new account. password may be empty, in which case the
// account has no local credential until one is set later. The plaintext is
// hashed before it ever reaches the database.
func (s *Store) Create(ctx context.Context, email, password string) (*Account, error) {
	acct := &Account{
		PublicID: uuid.NewString(),
		Email:    NormalizeEmail(email),
	}
	if password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("hashing password: %w", err)
		}
		acct.PasswordHash = string(hash)
	}

	if err := s.db.WithContext(ctx).Create(acct).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateEmail
		}
		return nil, err
	}
	return acct, nil
}

func (s *Store) FindByEmail(ctx context.Context, email string) (*Account, error) {
	return s.findOne(ctx, "email = ?", NormalizeEmail(email))
}

// FindByPublicID resolves the opaque identifier carried in session tokens.
func (s *Store) FindByPublicID(ctx context.Context, publicID string) (*Account, error) {
	return s.findOne(ctx, "public_id = ?", publicID)
}

func (s *Store) FindByVerificationToken(ctx context.Context, token string) (*Account, error) {
	if token == "" {
		// cleared challenges store the empty string; never match on it
		return nil, ErrNotFound
	}
	return s.findOne(ctx, "email_verification_token = ?", token)
}

func (s *Store) FindByResetToken(ctx context.Context, token string) (*Account, error) {
	if token == "" {
		return nil, ErrNotFound
	}
	return s.findOne(ctx, "password_reset_token = ?", token)
}

func (s *Store) findOne(ctx context.Context, query string, arg string) (*Account, error) {
	var acct Account
	err := s.db.WithContext(ctx).First(&acct, query, arg).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &acct, nil
}

// Update is a partial update of an account. Only non-nil fields are written.
// Password is the one field that is transformed on write: it is re-hashed,
// and only when actually present in the update, so unrelated saves never
// touch the stored hash.
type Update struct {
	Name      *string
	Phone     *string
	Address   *string
	DOB       *time.Time
	Gender    *string
	AvatarURL *string
	Password  *string
}

func (s *Store) Update(ctx context.Context, publicID string, upd Update) (*Account, error) {
	fields := map[string]any{}
	if upd.Name != nil {
		fields["name"] = *upd.Name
	}
	if upd.Phone != nil {
		fields["phone"] = *upd.Phone
	}
	if upd.Address != nil {
		fields["address"] = *upd.Address
	}
	if upd.DOB != nil {
		fields["dob"] = *upd.DOB
	}
	if upd.Gender != nil {
		fields["gender"] = *upd.Gender
	}
	if upd.AvatarURL != nil {
		fields["avatar_url"] = *upd.AvatarURL
	}
	if upd.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*upd.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("hashing password: %w", err)
		}
		fields["password_hash"] = string(hash)
	}

	if len(fields) > 0 {
		res := s.db.WithContext(ctx).Model(&Account{}).
			Where("public_id = ?", publicID).
			Updates(fields)
		if res.Error != nil {
			return nil, res.Error
		}
		if res.RowsAffected == 0 {
			return nil, ErrNotFound
		}
	}
	return s.FindByPublicID(ctx, publicID)
}

// LinkGoogle attaches a provider subject id to an existing account and
// backfills the avatar if the account never had one.
func (s *Store) LinkGoogle(ctx context.Context, publicID, googleID, avatarURL string) error {
	fields := map[string]any{"google_id": googleID}
	res := s.db.WithContext(ctx).Model(&Account{}).
		Where("public_id = ?", publicID).
		Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	if avatarURL != "" {
		// only fill in, never overwrite
		return s.db.WithContext(ctx).Model(&Account{}).
			Where("public_id = ? AND (avatar_url = '' OR avatar_url IS NULL)", publicID).
			Update("avatar_url", avatarURL).Error
	}
	return nil
}

// VerifyPassword compares a candidate against the stored hash. It never
// errors: an account with no hash (pure-OAuth) simply fails the comparison.
func (s *Store) VerifyPassword(acct *Account, candidate string) bool {
	if acct == nil || acct.PasswordHash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(acct.PasswordHash), []byte(candidate)) == nil
}

// SetVerificationChallenge replaces the account's active email-verification
// challenge. Any prior unconsumed token stops validating immediately.
func (s *Store) SetVerificationChallenge(ctx context.Context, publicID, token string, expiry time.Time) error {
	return s.setChallenge(ctx, publicID, map[string]any{
		"email_verification_token":  token,
		"email_verification_expiry": expiry,
	})
}

// SetResetChallenge replaces the account's active password-reset challenge.
func (s *Store) SetResetChallenge(ctx context.Context, publicID, token string, expiry time.Time) error {
	return s.setChallenge(ctx, publicID, map[string]any{
		"password_reset_token":  token,
		"password_reset_expiry": expiry,
	})
}

func (s *Store) setChallenge(ctx context.Context, publicID string, fields map[string]any) error {
	res := s.db.WithContext(ctx).Model(&Account{}).
		Where("public_id = ?", publicID).
		Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ConsumeVerificationToken flips EmailVerified and clears the challenge in a
// single conditional update keyed on the token value. Of two concurrent
// consumers, exactly one sees RowsAffected == 1; the other gets ErrNotFound.
func (s *Store) ConsumeVerificationToken(ctx context.Context, token string) (*Account, error) {
	acct, err := s.FindByVerificationToken(ctx, token)
	if err != nil {
		return nil, err
	}
	res := s.db.WithContext(ctx).Model(&Account{}).
		Where("email_verification_token = ?", token).
		Updates(map[string]any{
			"email_verified":            true,
			"email_verification_token":  "",
			"email_verification_expiry": nil,
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	acct.EmailVerified = true
	acct.EmailVerificationToken = ""
	acct.EmailVerificationExpiry = nil
	return acct, nil
}

// ConsumeResetToken sets the new password and clears the challenge in a
// single conditional update. The plaintext is hashed before the update runs.
func (s *Store) ConsumeResetToken(ctx context.Context, token, newPassword string) error {
	if token == "" {
		return ErrNotFound
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}
	res := s.db.WithContext(ctx).Model(&Account{}).
		Where("password_reset_token = ?", token).
		Updates(map[string]any{
			"password_hash":         string(hash),
			"password_reset_token":  "",
			"password_reset_expiry": nil,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes an account and cascades into the community feed: the
// account's posts are deleted and its id is stripped from every remaining
// post's like-set. The whole cascade runs in one transaction, so a caller
// never observes a half-deleted account.
func (s *Store) Delete(ctx context.Context, publicID string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("author_id = ?", publicID).Delete(&Post{}).Error; err != nil {
			return err
		}

		var liked []Post
		if err := tx.Where("liked_by LIKE ?", "%"+publicID+"%").Find(&liked).Error; err != nil {
			return err
		}
		for i := range liked {
			post := &liked[i]
			kept := post.LikedBy[:0]
			for _, id := range post.LikedBy {
				if id != publicID {
					kept = append(kept, id)
				}
			}
			if len(kept) == len(post.LikedBy) {
				continue // LIKE over-matched (id was a substring)
			}
			err := tx.Model(post).Updates(map[string]any{
				"liked_by": StringSlice(kept),
				"likes":    len(kept),
			}).Error
			if err != nil {
				return err
			}
		}

		res := tx.Where("public_id = ?", publicID).Delete(&Account{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}
