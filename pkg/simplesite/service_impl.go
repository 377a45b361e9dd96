package simplesite

import (
	"fmt"
	"strings"
	"time"
)

// DefaultMaxImageSize is the largest accepted image upload
const DefaultMaxImageSize int64 = 5 << 20

// ImageKeyPrefix is prepended to the object key of every uploaded image
const ImageKeyPrefix = "images/"

// service implements the Service interface
type service struct {
	repository    Repository
	imageStore    ImageStore
	publicBaseURL string
	maxImageSize  int64
	now           func() time.Time
}

// Option represents a functional option for configuring the service
type Option func(*service)

// WithRepository sets the repository for the service
func WithRepository(repo Repository) Option {
	return func(s *service) {
		s.repository = repo
	}
}

// WithImageStore sets the object store used for uploaded images
func WithImageStore(store ImageStore) Option {
	return func(s *service) {
		s.imageStore = store
	}
}

// WithPublicBaseURL sets the URL prefix of uploaded images. When empty,
// images are served by the site itself under /assets/.
func WithPublicBaseURL(baseURL string) Option {
	return func(s *service) {
		s.publicBaseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithMaxImageSize overrides the upload size limit
func WithMaxImageSize(size int64) Option {
	return func(s *service) {
		if size > 0 {
			s.maxImageSize = size
		}
	}
}

// MaxImageSize returns the largest accepted image upload in bytes
func (s *service) MaxImageSize() int64 {
	return s.maxImageSize
}

// WithClock sets the time source used for timestamps
func WithClock(now func() time.Time) Option {
	return func(s *service) {
		if now != nil {
			s.now = now
		}
	}
}

// New creates a new service instance with the given options
func New(options ...Option) (Service, error) {
	s := &service{
		maxImageSize: DefaultMaxImageSize,
		now:          time.Now,
	}

	for _, option := range options {
		option(s)
	}

	if s.repository == nil {
		return nil, fmt.Errorf("repository is required")
	}

	return s, nil
}

func (s *service) timestamp() time.Time {
	return s.now().UTC()
}

// publicURL maps an object key to the URL stored in content rows
func (s *service) publicURL(objectKey string) string {
	if s.publicBaseURL != "" {
		return s.publicBaseURL + "/" + objectKey
	}
	return "/assets/" + objectKey
}
