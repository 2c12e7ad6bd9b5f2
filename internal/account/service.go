// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Ironvale Contributors

// Package account orchestrates login, registration, and account
// maintenance on top of the durable file store, the auth record codec, and
// the flat-file registries.
package account

import (
	"context"
	"errors"
	"log/slog"

	"github.com/samber/oops"

	"github.com/ironvale/playerstore/internal/auth"
	"github.com/ironvale/playerstore/internal/observability"
	"github.com/ironvale/playerstore/internal/registry"
	"github.com/ironvale/playerstore/internal/store"
	"github.com/ironvale/playerstore/pkg/errutil"
)

// LoginStatus is the terminal state of a login attempt. Internal failures
// are reported as errors, not statuses.
type LoginStatus int

// Login outcomes.
const (
	StatusGranted LoginStatus = iota
	StatusDenied
	StatusBanned
)

// String returns the metric label for a status.
func (s LoginStatus) String() string {
	switch s {
	case StatusGranted:
		return "granted"
	case StatusDenied:
		return "denied"
	case StatusBanned:
		return "banned"
	default:
		return "unknown"
	}
}

// LoginResult is the outcome of a login attempt. Identity and Save are
// populated only when Status is StatusGranted.
type LoginResult struct {
	Status     LoginStatus
	Reason     string
	Identity   Identity
	Save       PlayerSave
	NewAccount bool
}

// Config collects the dependencies of a Service.
type Config struct {
	Paths   *store.Paths
	Files   *store.Store
	NewSave SaveFactory
	Logger  *slog.Logger
	Metrics *observability.Metrics // optional
}

// Service composes the store, codec, and registries into the account
// workflows. All state it owns is process-scoped and explicit; construct a
// fresh instance per test with an isolated data root.
type Service struct {
	paths    *store.Paths
	files    *store.Store
	newSave  SaveFactory
	logger   *slog.Logger
	metrics  *observability.Metrics
	userBans *registry.BanList
	ipBans   *registry.BanList
	counter  *registry.Counter
	clans    *registry.ClanRegistry
}

// NewService creates a Service. Registries are created from the path
// layout but not loaded; call Init before serving traffic.
func NewService(cfg Config) (*Service, error) {
	if cfg.Paths == nil {
		return nil, oops.Errorf("paths are required")
	}
	if cfg.Files == nil {
		return nil, oops.Errorf("file store is required")
	}
	if cfg.NewSave == nil {
		return nil, oops.Errorf("save factory is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Service{
		paths:    cfg.Paths,
		files:    cfg.Files,
		newSave:  cfg.NewSave,
		logger:   logger,
		metrics:  cfg.Metrics,
		userBans: registry.NewUserBanList(cfg.Paths.UserBansPath(), logger),
		ipBans:   registry.NewIPBanList(cfg.Paths.IPBansPath(), logger),
		counter:  registry.NewCounter(cfg.Paths.UserIDPath()),
		clans:    registry.NewClanRegistry(cfg.Paths.ClanRegistryPath(), logger),
	}, nil
}

// Init creates the directory tree and loads the registries. Must complete
// before any account traffic.
func (s *Service) Init() error {
	if err := s.paths.Init(); err != nil {
		return err
	}
	if err := s.userBans.Load(); err != nil {
		return err
	}
	if err := s.ipBans.Load(); err != nil {
		return err
	}
	if err := s.counter.Load(s.logger); err != nil {
		return err
	}
	s.logger.Info("account service initialized", "data_root", s.paths.Root())
	return nil
}

// Login authenticates a player, registering the account on first contact.
//
// Outcomes: a banned username or IP yields StatusBanned; a password
// mismatch yields StatusDenied with a generic reason; an unknown username
// triggers registration and yields StatusGranted with a fresh identity and
// default save. An auth record without a player record is an inconsistency
// error (ErrInconsistent), never silently repaired.
func (s *Service) Login(ctx context.Context, username, password, ip string) (*LoginResult, error) {
	if s.userBans.Contains(username) || (ip != "" && s.ipBans.Contains(ip)) {
		s.logger.Info("login denied: banned", "username", username)
		s.countLogin(StatusBanned)
		return &LoginResult{Status: StatusBanned, Reason: "account or address is banned"}, nil
	}

	authPath := s.paths.AuthPath(username)
	if !s.files.Exists(authPath) {
		return s.register(ctx, username, password)
	}

	data, err := s.files.ReadValidated(ctx, authPath, auth.Validate)
	if err != nil {
		return nil, oops.Code("ACCOUNT_LOGIN_FAILED").
			With("operation", "read auth record").
			With("username", username).
			Wrap(err)
	}
	rec, err := auth.Decode(data)
	if err != nil {
		return nil, oops.Code("ACCOUNT_LOGIN_FAILED").
			With("operation", "decode auth record").
			With("username", username).
			Wrap(err)
	}

	if !rec.Verify(password) {
		s.logger.Info("login denied: invalid credentials", "username", username)
		s.countLogin(StatusDenied)
		return &LoginResult{Status: StatusDenied, Reason: ErrInvalidCredentials.Error()}, nil
	}

	identity := Identity{Username: username, UserID: rec.UserID, Rights: rec.Rights}

	playerData, err := s.files.Read(ctx, s.paths.PlayerPath(username))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// Auth without a save: surfaced, never recreated.
			return nil, oops.Code("ACCOUNT_INCONSISTENT").
				With("username", username).
				Wrap(ErrInconsistent)
		}
		return nil, oops.Code("ACCOUNT_LOGIN_FAILED").
			With("operation", "read player record").
			With("username", username).
			Wrap(err)
	}

	save := s.newSave(identity)
	if err := save.UnmarshalBinary(playerData); err != nil {
		return nil, oops.Code("ACCOUNT_LOGIN_FAILED").
			With("operation", "deserialize player record").
			With("username", username).
			Wrap(err)
	}

	s.logger.Info("login granted", "username", username, "user_id", identity.UserID)
	s.countLogin(StatusGranted)
	return &LoginResult{Status: StatusGranted, Identity: identity, Save: save}, nil
}

// register creates the auth record and initial save for a first-time
// username. The two writes are not a transaction: a crash in between
// leaves the account inconsistent until surfaced on next login (see
// ErrInconsistent).
func (s *Service) register(ctx context.Context, username, password string) (*LoginResult, error) {
	if s.files.Exists(s.paths.AuthPath(username)) {
		return nil, oops.Code("ACCOUNT_REGISTER_FAILED").
			With("username", username).
			Errorf("account already registered")
	}

	userID, err := s.counter.Next()
	if err != nil {
		return nil, oops.Code("ACCOUNT_REGISTER_FAILED").
			With("operation", "allocate user id").
			With("username", username).
			Wrap(err)
	}

	rec, err := auth.NewRecord(userID, auth.RightsPlayer, password)
	if err != nil {
		return nil, oops.Code("ACCOUNT_REGISTER_FAILED").
			With("username", username).
			Wrap(err)
	}
	if err := s.files.Write(ctx, s.paths.AuthPath(username), rec.Encode()); err != nil {
		return nil, oops.Code("ACCOUNT_REGISTER_FAILED").
			With("operation", "write auth record").
			With("username", username).
			Wrap(err)
	}

	identity := Identity{Username: username, UserID: userID, Rights: auth.RightsPlayer}
	save := s.newSave(identity)

	data, err := save.MarshalBinary()
	if err != nil {
		return nil, oops.Code("ACCOUNT_REGISTER_FAILED").
			With("operation", "serialize default save").
			With("username", username).
			Wrap(err)
	}
	if err := s.files.Write(ctx, s.paths.PlayerPath(username), data); err != nil {
		return nil, oops.Code("ACCOUNT_REGISTER_FAILED").
			With("operation", "write player record").
			With("username", username).
			Wrap(err)
	}

	s.logger.Info("registered new player", "username", username, "user_id", userID)
	if s.metrics != nil {
		s.metrics.RegistrationsTotal.Inc()
	}
	s.countLogin(StatusGranted)
	return &LoginResult{Status: StatusGranted, Identity: identity, Save: save, NewAccount: true}, nil
}

// SavePlayer serializes and durably writes a player's state. Persistence
// is fire-and-forget: failures are logged, never raised to the caller.
func (s *Service) SavePlayer(ctx context.Context, username string, save PlayerSave) {
	data, err := save.MarshalBinary()
	if err != nil {
		s.countSaveFailure()
		s.logger.Error("failed to serialize player save", "username", username, "error", err)
		return
	}
	if err := s.files.Write(ctx, s.paths.PlayerPath(username), data); err != nil {
		s.countSaveFailure()
		errutil.LogError(s.logger, "failed to write player save", err)
		return
	}
	s.logger.Debug("saved player", "username", username, "bytes", len(data))
}

// ChangePassword re-authenticates with the old password and replaces the
// credential with a fresh salt and hash, preserving identity and rights.
func (s *Service) ChangePassword(ctx context.Context, username, oldPassword, newPassword string) error {
	return s.files.Update(ctx, s.paths.AuthPath(username), auth.Validate, func(data []byte) ([]byte, error) {
		rec, err := auth.Decode(data)
		if err != nil {
			return nil, err
		}
		if !rec.Verify(oldPassword) {
			return nil, oops.Code("ACCOUNT_INVALID_CREDENTIALS").
				With("username", username).
				Wrap(ErrInvalidCredentials)
		}
		updated, err := auth.NewRecord(rec.UserID, rec.Rights, newPassword)
		if err != nil {
			return nil, err
		}
		s.logger.Info("password changed", "username", username)
		return updated.Encode(), nil
	})
}

// UpdateRights rewrites the auth record with a new rights level,
// preserving all other fields.
func (s *Service) UpdateRights(ctx context.Context, username string, rights auth.Rights) error {
	if !rights.Valid() {
		return oops.Code("ACCOUNT_INVALID_RIGHTS").
			With("rights", uint8(rights)).
			Errorf("invalid rights level")
	}
	return s.files.Update(ctx, s.paths.AuthPath(username), auth.Validate, func(data []byte) ([]byte, error) {
		rec, err := auth.Decode(data)
		if err != nil {
			return nil, err
		}
		rec.Rights = rights
		s.logger.Info("rights updated", "username", username, "rights", rights.String())
		return rec.Encode(), nil
	})
}

// GetIdentity reads a username's identity from its auth record header.
func (s *Service) GetIdentity(ctx context.Context, username string) (Identity, error) {
	data, err := s.files.ReadValidated(ctx, s.paths.AuthPath(username), auth.Validate)
	if err != nil {
		return Identity{}, err
	}
	rec, err := auth.Decode(data)
	if err != nil {
		return Identity{}, err
	}
	return Identity{Username: username, UserID: rec.UserID, Rights: rec.Rights}, nil
}

// GetUserID reads only the user id from a username's auth record.
func (s *Service) GetUserID(ctx context.Context, username string) (int32, error) {
	id, err := s.GetIdentity(ctx, username)
	return id.UserID, err
}

// GetRights reads only the rights level from a username's auth record.
func (s *Service) GetRights(ctx context.Context, username string) (auth.Rights, error) {
	id, err := s.GetIdentity(ctx, username)
	return id.Rights, err
}

// PlayerExists reports whether a save file exists for username.
func (s *Service) PlayerExists(username string) bool {
	return s.files.Exists(s.paths.PlayerPath(username))
}

// AuthExists reports whether an auth record exists for username.
func (s *Service) AuthExists(username string) bool {
	return s.files.Exists(s.paths.AuthPath(username))
}

// DeletePlayer removes a player's save, its backup, and the auth record.
func (s *Service) DeletePlayer(ctx context.Context, username string) error {
	if err := s.files.Delete(ctx, s.paths.PlayerPath(username)); err != nil {
		return err
	}
	if err := s.files.Delete(ctx, s.paths.AuthPath(username)); err != nil {
		return err
	}
	s.logger.Info("deleted player", "username", username)
	return nil
}

// BanUser bans a username.
func (s *Service) BanUser(username string) error { return s.userBans.Add(username) }

// UnbanUser unbans a username.
func (s *Service) UnbanUser(username string) error { return s.userBans.Remove(username) }

// IsBanned reports whether a username is banned.
func (s *Service) IsBanned(username string) bool { return s.userBans.Contains(username) }

// BanIP bans an IP literal.
func (s *Service) BanIP(ip string) error { return s.ipBans.Add(ip) }

// UnbanIP unbans an IP literal.
func (s *Service) UnbanIP(ip string) error { return s.ipBans.Remove(ip) }

// IsIPBanned reports whether an IP literal is banned.
func (s *Service) IsIPBanned(ip string) bool { return s.ipBans.Contains(ip) }

// Reload re-reads the ban lists from disk.
func (s *Service) Reload() error {
	if err := s.userBans.Reload(); err != nil {
		return err
	}
	if err := s.ipBans.Reload(); err != nil {
		return err
	}
	s.logger.Info("ban lists reloaded")
	return nil
}

// RegisterClan reserves a clan name for an owner in the clan registry.
// Clan state itself lives inside the owner's player record.
func (s *Service) RegisterClan(owner, name string) error {
	return s.clans.Register(owner, name)
}

// LookupClan returns the clan name an owner registered, or "".
func (s *Service) LookupClan(owner string) (string, error) {
	return s.clans.Lookup(owner)
}

// LoadClan reads the owner's player record and hands it to the external
// clan deserializer. Returns store.ErrNotFound when the owner has no save.
func (s *Service) LoadClan(ctx context.Context, owner string, clan Clan) error {
	data, err := s.files.Read(ctx, s.paths.PlayerPath(owner))
	if err != nil {
		return err
	}
	if err := clan.UnmarshalBinary(data); err != nil {
		return oops.Code("CLAN_LOAD_FAILED").
			With("owner", owner).
			Wrap(err)
	}
	return nil
}

// SaveClan rewrites the owner's player record with updated clan state.
// merge is the external serializer's record transformer; the read, merge,
// and durable write happen atomically under the record's path lock.
func (s *Service) SaveClan(ctx context.Context, owner string, merge RecordMerge) error {
	if merge == nil {
		return oops.Errorf("clan merge function is required")
	}
	return s.files.Update(ctx, s.paths.PlayerPath(owner), nil, merge)
}

func (s *Service) countLogin(status LoginStatus) {
	if s.metrics != nil {
		s.metrics.LoginsTotal.WithLabelValues(status.String()).Inc()
	}
}

func (s *Service) countSaveFailure() {
	if s.metrics != nil {
		s.metrics.SaveFailuresTotal.Inc()
	}
}
