package organizations

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/leaguedesk/backend/internal/models"
	"github.com/leaguedesk/backend/pkg/database"
)

// LogoNamespace is the blob storage prefix for organization logos.
const LogoNamespace = "logos"

var (
	// ErrStorage means a supplied logo could not be stored; nothing was created.
	ErrStorage = errors.New("logo storage failed")
	// ErrPersistence means the organization could not be saved; nothing was created.
	ErrPersistence = errors.New("organization persistence failed")
)

// Store writes organizations and memberships through db, which may be a transaction.
type Store interface {
	Insert(ctx context.Context, db database.DBTX, org *models.Organization) error
	AddMember(ctx context.Context, db database.DBTX, orgID, userID int64, role models.MembershipRole) error
}

// BlobStore persists uploaded files.
type BlobStore interface {
	Put(ctx context.Context, key, contentType string, body io.Reader, size int64) error
}

// CleanupQueue schedules deletion of a blob no row refers to.
type CleanupQueue interface {
	EnqueueBlobCleanup(ctx context.Context, key string) error
}

// Provisioner creates organizations together with their owner's membership.
type Provisioner struct {
	tx        database.Transactor
	store     Store
	blobs     BlobStore
	cleanup   CleanupQueue
	validator *inputValidator
	logger    *zap.Logger
	newUUID   func() uuid.UUID
}

// ProvisionerConfig holds Provisioner dependencies. Cleanup may be nil.
type ProvisionerConfig struct {
	Tx        database.Transactor
	Store     Store
	Blobs     BlobStore
	Cleanup   CleanupQueue
	MaxLogoKB int64
	Logger    *zap.Logger
}

// NewProvisioner creates a Provisioner.
func NewProvisioner(cfg ProvisionerConfig) *Provisioner {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Provisioner{
		tx:        cfg.Tx,
		store:     cfg.Store,
		blobs:     cfg.Blobs,
		cleanup:   cfg.Cleanup,
		validator: newInputValidator(cfg.MaxLogoKB),
		logger:    logger.Named("provisioner"),
		newUUID:   uuid.New,
	}
}

// CreateOrganization validates in, stores the logo (if any), then creates the
// organization and the owner's guardian membership in one transaction.
//
// A *ValidationError is returned for bad input. Other failures wrap ErrStorage
// or ErrPersistence; in both cases no organization or membership exists afterwards.
// Callers must forget any memoized current organization for ownerID on success.
func (p *Provisioner) CreateOrganization(ctx context.Context, ownerID int64, in CreateOrganizationInput) (*models.Organization, error) {
	normalize(&in)
	mtype, err := p.validator.check(in)
	if err != nil {
		return nil, err
	}

	org := &models.Organization{
		UUID:         p.newUUID(),
		Name:         in.Name,
		OwnerID:      ownerID,
		PrimaryColor: in.PrimaryColor,
	}
	org.Slug = Slugify(in.Name)
	if org.Slug == "" {
		org.Slug = "org-" + org.UUID.String()[:8]
	}

	// The blob goes first: a failed commit may orphan it, but a row never
	// references a missing blob.
	if in.Logo != nil {
		key := logoKey(org.UUID, mtype)
		if err := p.blobs.Put(ctx, key, mtype.String(), in.Logo.Content, in.Logo.Size); err != nil {
			p.logger.Error("store logo", zap.String("key", key), zap.Error(err))
			return nil, fmt.Errorf("%w: %v", ErrStorage, err)
		}
		org.LogoPath = &key
	}

	err = p.tx.InTx(ctx, func(db database.DBTX) error {
		if err := p.store.Insert(ctx, db, org); err != nil {
			return err
		}
		return p.store.AddMember(ctx, db, org.ID, ownerID, models.RoleGuardian)
	})
	if err != nil {
		p.logger.Error("create organization", zap.Int64("owner_id", ownerID), zap.Error(err))
		if org.LogoPath != nil {
			p.scheduleCleanup(*org.LogoPath)
		}
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	p.logger.Info("organization created",
		zap.Int64("organization_id", org.ID),
		zap.String("uuid", org.UUID.String()),
		zap.String("slug", org.Slug),
		zap.Int64("owner_id", ownerID),
	)
	return org, nil
}

func (p *Provisioner) scheduleCleanup(key string) {
	if p.cleanup == nil {
		p.logger.Warn("orphaned logo left in storage", zap.String("key", key))
		return
	}
	// the request context may already be cancelled
	if err := p.cleanup.EnqueueBlobCleanup(context.Background(), key); err != nil {
		p.logger.Warn("enqueue logo cleanup", zap.String("key", key), zap.Error(err))
	}
}

func logoKey(id uuid.UUID, mtype *mimetype.MIME) string {
	return path.Join(LogoNamespace, id.String()+mtype.Extension())
}
