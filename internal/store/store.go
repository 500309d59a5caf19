// Package store is the user store adapter of spec.md §4.1: register,
// login, lookup by id, and match-outcome score updates, backed by
// xorm over MySQL the way the teacher's go.mod (go-xorm/xorm,
// go-xorm/core, go-sql-driver/mysql) implies its own db package does.
// Translated from original_source/src/db.hpp's user_table, which used
// hand-built SQL strings over libmysqlclient; xorm's struct mapping
// replaces that with typed queries.
package store

import (
	"database/sql"
	"strings"

	_ "github.com/go-sql-driver/mysql"
	"github.com/go-xorm/xorm"
	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"

	"github.com/EWIAW/gobang/internal/config"
	"github.com/EWIAW/gobang/internal/gamelog"
)

var logger = gamelog.New("store")

// ErrConflict is returned by Register when the username already
// exists, matching spec.md §4.1 ("register -> ok|conflict|error").
var ErrConflict = errors.New("username already registered")

// ErrAuthFail is returned by Login on a bad username/password pair.
var ErrAuthFail = errors.New("invalid username or password")

// ErrNotFound is returned by Lookup for an unknown uid.
var ErrNotFound = errors.New("user not found")

// User is the persisted row, matching spec.md §3's User data model
// and original_source/src/db.hpp's schema
// (id/username/password/score/total_count/win_count).
type User struct {
	ID           uint64 `xorm:"pk autoincr 'id'"`
	Username     string `xorm:"unique notnull 'username'"`
	PasswordHash string `xorm:"notnull 'password_hash'"`
	Score        uint64 `xorm:"notnull default 1000 'score'"`
	TotalCount   uint32 `xorm:"notnull default 0 'total_count'"`
	WinCount     uint32 `xorm:"notnull default 0 'win_count'"`
}

// TableName pins the xorm-mapped table name explicitly.
func (User) TableName() string { return "user" }

// Store is the user store adapter. All methods are synchronous and
// may block on DB I/O, per spec.md §4.1; xorm's *Engine already
// serialises access through database/sql's pooled connections, so no
// extra locking is needed here.
type Store struct {
	engine *xorm.Engine
}

// Open connects to MySQL using cfg and ensures the user table exists.
func Open(cfg config.DBConfig) (*Store, error) {
	engine, err := xorm.NewEngine("mysql", cfg.DSN())
	if err != nil {
		return nil, errors.Wrap(err, "open xorm engine")
	}
	if err := engine.Ping(); err != nil {
		return nil, errors.Wrap(err, "ping mysql")
	}
	if err := engine.Sync2(new(User)); err != nil {
		return nil, errors.Wrap(err, "sync user table")
	}
	logger.Infof("connected to mysql at %s:%d/%s", cfg.Host, cfg.Port, cfg.Name)
	return &Store{engine: engine}, nil
}

// Register inserts a new user with score 1000 / totals 0, per
// spec.md §3. The password is bcrypt-hashed before storage, the
// server-side one-way hash spec.md §4.1 calls for.
func (s *Store) Register(username, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return errors.Wrap(err, "hash password")
	}

	user := &User{
		Username:     username,
		PasswordHash: string(hash),
		Score:        1000,
	}
	_, err = s.engine.Insert(user)
	if err != nil {
		if isDuplicateKeyErr(err) {
			return ErrConflict
		}
		return errors.Wrap(err, "insert user")
	}
	return nil
}

// Login verifies username/password and returns the full user row on
// success, matching original_source/src/db.hpp's combined
// verify-and-fetch `login` query.
func (s *Store) Login(username, password string) (*User, error) {
	user := new(User)
	has, err := s.engine.Where("username = ?", username).Get(user)
	if err != nil {
		return nil, errors.Wrap(err, "select user by username")
	}
	if !has {
		return nil, ErrAuthFail
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, ErrAuthFail
	}
	return user, nil
}

// Lookup fetches a user's profile by id, used by /information and by
// the matchmaker's tier classification.
func (s *Store) Lookup(uid uint64) (*User, error) {
	user := new(User)
	has, err := s.engine.ID(uid).Get(user)
	if err != nil {
		return nil, errors.Wrap(err, "select user by id")
	}
	if !has {
		return nil, ErrNotFound
	}
	return user, nil
}

// RecordWin applies the winner's match outcome: score+30, total+1,
// win+1, per spec.md §3.
func (s *Store) RecordWin(uid uint64) error {
	_, err := s.engine.Exec(
		"UPDATE `user` SET score = score + 30, total_count = total_count + 1, win_count = win_count + 1 WHERE id = ?",
		uid,
	)
	if err != nil {
		return errors.Wrap(err, "record win")
	}
	return nil
}

// RecordLoss applies the loser's match outcome: score-30 (saturating
// at 0 per spec.md §9), total+1.
func (s *Store) RecordLoss(uid uint64) error {
	_, err := s.engine.Exec(
		"UPDATE `user` SET score = IF(score >= 30, score - 30, 0), total_count = total_count + 1 WHERE id = ?",
		uid,
	)
	if err != nil {
		return errors.Wrap(err, "record loss")
	}
	return nil
}

func isDuplicateKeyErr(err error) bool {
	if err == nil {
		return false
	}
	// database/sql wraps driver errors; xorm surfaces the MySQL
	// driver's *mysql.MySQLError with code 1062 for duplicate keys.
	// We only need the common-case substring check here since the
	// dedicated driver type isn't imported (it's referenced only
	// through the blank mysql driver import above).
	return err != sql.ErrNoRows && containsDuplicateMarker(err.Error())
}

func containsDuplicateMarker(msg string) bool {
	for _, marker := range []string{"Duplicate entry", "1062", "UNIQUE constraint"} {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}
