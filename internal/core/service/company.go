package service

import (
	"context"
	"errors"
	"path"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/billio/invoicing-api/internal/core/domain"
	"github.com/billio/invoicing-api/internal/core/ports"
)

// logoLinkTTL bounds how long a signed logo link stays valid.
const logoLinkTTL = 15 * time.Minute

// CompanyStore holds the per-owner company singleton. A missing row is
// lazily created with placeholder defaults on first access, and every
// write is followed by a reload so server-computed fields are normalized.
type CompanyStore struct {
	repo       ports.CompanyRepository
	storage    ports.ObjectStorage
	logoBucket string
	log        zerolog.Logger

	mu    sync.RWMutex
	cache map[string]*domain.CompanyInfo
}

func NewCompanyStore(repo ports.CompanyRepository, storage ports.ObjectStorage, logoBucket string, log zerolog.Logger) *CompanyStore {
	return &CompanyStore{
		repo:       repo,
		storage:    storage,
		logoBucket: logoBucket,
		log:        log,
		cache:      make(map[string]*domain.CompanyInfo),
	}
}

// Get returns the owner's company info, creating the placeholder row when
// absent.
func (s *CompanyStore) Get(ctx context.Context, ownerID string) (*domain.CompanyInfo, error) {
	if ownerID == "" {
		return nil, domain.ErrNotAuthenticated
	}

	info, err := s.repo.FindByOwner(ctx, ownerID)
	if errors.Is(err, domain.ErrCompanyNotFound) {
		info = domain.DefaultCompanyInfo(ownerID)
		if err := s.repo.Upsert(ctx, info); err != nil {
			s.log.Error().Err(err).Str("owner_id", ownerID).Msg("failed to create default company info")
			return nil, err
		}
		s.log.Info().Str("owner_id", ownerID).Msg("company info created with defaults")
	} else if err != nil {
		s.log.Error().Err(err).Str("owner_id", ownerID).Msg("failed to load company info")
		return nil, err
	}

	s.mu.Lock()
	s.cache[ownerID] = info
	s.mu.Unlock()

	clone := *info
	return &clone, nil
}

// Save writes the owner's company info and reloads it from the remote
// table.
func (s *CompanyStore) Save(ctx context.Context, ownerID string, in ports.CompanyInput) (*domain.CompanyInfo, error) {
	if ownerID == "" {
		return nil, domain.ErrNotAuthenticated
	}

	current, err := s.Get(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	info := *current
	info.Name = in.Name
	info.Address = in.Address
	info.Street = in.Street
	info.HouseNumber = in.HouseNumber
	info.PostalCode = in.PostalCode
	info.City = in.City
	info.VATID = in.VATID
	info.IBAN = in.IBAN
	info.PinID = in.PinID
	info.Web = in.Web
	info.Email = in.Email
	info.Phone = in.Phone
	info.UpdatedAt = time.Now().UTC()

	if err := s.repo.Upsert(ctx, &info); err != nil {
		s.log.Error().Err(err).Str("owner_id", ownerID).Msg("failed to save company info")
		return nil, err
	}

	return s.reload(ctx, ownerID)
}

// UploadLogo stores the logo in object storage under the owner's prefix,
// records its public URL on the company row and returns the URL.
func (s *CompanyStore) UploadLogo(ctx context.Context, ownerID, filename, contentType string, data []byte) (string, error) {
	if ownerID == "" {
		return "", domain.ErrNotAuthenticated
	}

	objectPath := path.Join(ownerID, filename)
	if err := s.storage.Upload(ctx, s.logoBucket, objectPath, data, contentType); err != nil {
		s.log.Error().Err(err).Str("owner_id", ownerID).Msg("logo upload failed")
		return "", err
	}
	url := s.storage.PublicURL(s.logoBucket, objectPath)

	current, err := s.Get(ctx, ownerID)
	if err != nil {
		return "", err
	}
	info := *current
	info.LogoURL = url
	info.LogoPath = objectPath
	info.UpdatedAt = time.Now().UTC()

	if err := s.repo.Upsert(ctx, &info); err != nil {
		s.log.Error().Err(err).Str("owner_id", ownerID).Msg("failed to record logo url")
		return "", err
	}
	if _, err := s.reload(ctx, ownerID); err != nil {
		return "", err
	}

	s.log.Info().Str("owner_id", ownerID).Str("path", objectPath).Msg("logo uploaded")
	return url, nil
}

// LogoLink returns a short-lived signed download link for the stored logo.
// Works for non-public buckets where the recorded public URL would 403.
func (s *CompanyStore) LogoLink(ctx context.Context, ownerID string) (string, error) {
	if ownerID == "" {
		return "", domain.ErrNotAuthenticated
	}

	info, err := s.Get(ctx, ownerID)
	if err != nil {
		return "", err
	}
	if info.LogoPath == "" {
		return "", domain.ErrLogoNotFound
	}

	link, err := s.storage.SignedURL(ctx, s.logoBucket, info.LogoPath, logoLinkTTL)
	if err != nil {
		s.log.Error().Err(err).Str("owner_id", ownerID).Msg("signing logo link failed")
		return "", err
	}
	return link, nil
}

func (s *CompanyStore) reload(ctx context.Context, ownerID string) (*domain.CompanyInfo, error) {
	info, err := s.repo.FindByOwner(ctx, ownerID)
	if err != nil {
		s.log.Error().Err(err).Str("owner_id", ownerID).Msg("reload after company write failed")
		return nil, err
	}

	s.mu.Lock()
	s.cache[ownerID] = info
	s.mu.Unlock()

	clone := *info
	return &clone, nil
}
