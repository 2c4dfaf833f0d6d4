package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/iliyamo/coin-rewards/internal/model"
)

// UserRepo mirrors the 'users' and 'coupons' tables.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

const userColumns = "id,email,mobile,name,password_hash,role,coins,total_spent,created_at"

// dbTime scans DATETIME columns from both the MySQL driver (time.Time with
// parseTime=true) and SQLite (text) into a UTC time.
type dbTime struct {
	Time  time.Time
	Valid bool
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999 -0700 MST",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
}

func (t *dbTime) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		t.Time, t.Valid = time.Time{}, false
		return nil
	case time.Time:
		t.Time, t.Valid = v.UTC(), true
		return nil
	case []byte:
		return t.parse(string(v))
	case string:
		return t.parse(v)
	}
	return fmt.Errorf("unsupported time value %T", src)
}

func (t *dbTime) parse(s string) error {
	for _, layout := range timeLayouts {
		if p, err := time.Parse(layout, s); err == nil {
			t.Time, t.Valid = p.UTC(), true
			return nil
		}
	}
	return fmt.Errorf("unparseable time %q", s)
}

// isDuplicate recognises unique-key violations from MySQL (1062) and SQLite.
func isDuplicate(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "1062") || strings.Contains(msg, "unique constraint")
}

// nullString stores an empty string as NULL.
func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

type rowScanner interface{ Scan(dest ...any) error }

func scanUser(row rowScanner) (model.User, error) {
	var (
		u       model.User
		role    string
		mobile  sql.NullString
		created dbTime
	)
	if err := row.Scan(&u.ID, &u.Email, &mobile, &u.Name, &u.PasswordHash, &role, &u.Coins, &u.TotalSpent, &created); err != nil {
		return model.User{}, err
	}
	u.Role = model.Role(role)
	u.Mobile = mobile.String
	u.CreatedAt = created.Time
	u.Coupons = []model.Coupon{}
	return u, nil
}

func (r *UserRepo) findOne(ctx context.Context, where string, arg any) (model.User, error) {
	row := r.DB.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE "+where+" LIMIT 1", arg)
	u, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.User{}, ErrUserNotFound
		}
		return model.User{}, err
	}
	coupons, err := r.couponsFor(ctx, u.ID)
	if err != nil {
		return model.User{}, err
	}
	u.Coupons = coupons
	return u, nil
}

// FindByID fetches a user and its coupons by id.
func (r *UserRepo) FindByID(ctx context.Context, id string) (model.User, error) {
	return r.findOne(ctx, "id=?", id)
}

// FindByMobile fetches a user by mobile number.  Empty input never matches.
func (r *UserRepo) FindByMobile(ctx context.Context, mobile string) (model.User, error) {
	mobile = strings.TrimSpace(mobile)
	if mobile == "" {
		return model.User{}, ErrUserNotFound
	}
	return r.findOne(ctx, "mobile=?", mobile)
}

// ListUsers returns every user ordered by creation time, coupons attached.
func (r *UserRepo) ListUsers(ctx context.Context) ([]model.User, error) {
	rows, err := r.DB.QueryContext(ctx, "SELECT "+userColumns+" FROM users ORDER BY created_at, id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []model.User
	index := map[string]int{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		index[u.ID] = len(users)
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	crow, err := r.DB.QueryContext(ctx, "SELECT "+couponColumns+" FROM coupons ORDER BY created_at, id")
	if err != nil {
		return nil, err
	}
	defer crow.Close()
	for crow.Next() {
		owner, c, err := scanCoupon(crow)
		if err != nil {
			return nil, err
		}
		if i, ok := index[owner]; ok {
			users[i].Coupons = append(users[i].Coupons, c)
		}
	}
	return users, crow.Err()
}

// Insert stores a new user together with its coupons.
func (r *UserRepo) Insert(ctx context.Context, u model.User) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	// The unique index on mobile rejects concurrent duplicates.
	_, err = tx.ExecContext(ctx,
		"INSERT INTO users ("+userColumns+") VALUES (?,?,?,?,?,?,?,?,?)",
		u.ID, u.Email, nullString(u.Mobile), u.Name, u.PasswordHash, string(u.Role), u.Coins, u.TotalSpent, u.CreatedAt.UTC())
	if err != nil {
		if isDuplicate(err) {
			return ErrUserExists
		}
		return err
	}
	if err := insertCoupons(ctx, tx, u.ID, u.Coupons); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// Update rewrites the mutable user columns and replaces the coupon set in a
// single transaction.  Role and created_at are never changed.
func (r *UserRepo) Update(ctx context.Context, u model.User) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	var n int
	if err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM users WHERE id=?", u.ID).Scan(&n); err != nil {
		return err
	}
	if n == 0 {
		return ErrUserNotFound
	}
	if _, err := tx.ExecContext(ctx,
		"UPDATE users SET email=?, mobile=?, name=?, coins=?, total_spent=? WHERE id=?",
		u.Email, nullString(u.Mobile), u.Name, u.Coins, u.TotalSpent, u.ID); err != nil {
		if isDuplicate(err) {
			return ErrUserExists
		}
		return err
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM coupons WHERE user_id=?", u.ID); err != nil {
		return err
	}
	if err := insertCoupons(ctx, tx, u.ID, u.Coupons); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

const couponColumns = "user_id,id,code,value,is_used,created_at,used_at,expires_at"

func scanCoupon(row rowScanner) (string, model.Coupon, error) {
	var (
		owner                    string
		c                        model.Coupon
		created, used, expiresAt dbTime
	)
	if err := row.Scan(&owner, &c.ID, &c.Code, &c.Value, &c.IsUsed, &created, &used, &expiresAt); err != nil {
		return "", model.Coupon{}, err
	}
	c.CreatedAt = created.Time
	c.ExpiresAt = expiresAt.Time
	if used.Valid {
		t := used.Time
		c.UsedAt = &t
	}
	return owner, c, nil
}

func (r *UserRepo) couponsFor(ctx context.Context, userID string) ([]model.Coupon, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+couponColumns+" FROM coupons WHERE user_id=? ORDER BY created_at, id", userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Coupon{}
	for rows.Next() {
		_, c, err := scanCoupon(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func insertCoupons(ctx context.Context, tx *sql.Tx, userID string, coupons []model.Coupon) error {
	for _, c := range coupons {
		var usedAt any
		if c.UsedAt != nil {
			usedAt = c.UsedAt.UTC()
		}
		_, err := tx.ExecContext(ctx,
			"INSERT INTO coupons ("+couponColumns+") VALUES (?,?,?,?,?,?,?,?)",
			userID, c.ID, c.Code, c.Value, c.IsUsed, c.CreatedAt.UTC(), usedAt, c.ExpiresAt.UTC())
		if err != nil {
			if isDuplicate(err) {
				return fmt.Errorf("coupon %s: %w", c.Code, ErrConflict)
			}
			return err
		}
	}
	return nil
}

var _ UserRepository = (*UserRepo)(nil)
