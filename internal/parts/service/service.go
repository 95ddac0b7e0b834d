package service

import (
	"context"
	"fmt"

	"github.com/bitfantasy/partslib/internal/parts/events"
	"github.com/bitfantasy/partslib/internal/parts/repository"
	"github.com/bitfantasy/partslib/internal/parts/storage"
	"go.uber.org/zap"
)

// DeletePolicy decides what a hard component delete does with hierarchy edges.
type DeletePolicy string

const (
	// DeleteReject refuses to delete a component that is a parent or child in any edge.
	DeleteReject DeletePolicy = "reject"
	// DeleteDetach removes every edge touching the component; sub-components are kept.
	DeleteDetach DeletePolicy = "detach"
)

// ParseDeletePolicy parses a policy name; empty yields DeleteReject.
func ParseDeletePolicy(s string) (DeletePolicy, error) {
	switch DeletePolicy(s) {
	case "", DeleteReject:
		return DeleteReject, nil
	case DeleteDetach:
		return DeleteDetach, nil
	}
	return "", fieldError("policy", "must be one of: reject detach")
}

// Options 库级默认值
type Options struct {
	DefaultCurrency string
	DefaultOwner    string
	DeletePolicy    DeletePolicy
}

func (o Options) withDefaults() Options {
	if o.DefaultCurrency == "" {
		o.DefaultCurrency = "EUR"
	}
	if o.DefaultOwner == "" {
		o.DefaultOwner = "System"
	}
	if o.DeletePolicy == "" {
		o.DeletePolicy = DeleteReject
	}
	return o
}

// Services 服务集合
type Services struct {
	Component   *ComponentService
	Hierarchy   *HierarchyService
	Supplier    *SupplierService
	File        *FileService
	Material    *MaterialService
	Requirement *RequirementService
	Import      *ImportService
	Export      *ExportService
	Library     *Library
}

// NewServices 创建服务集合
func NewServices(repos *repository.Repositories, store storage.Store, pub events.Publisher, logger *zap.Logger, opts Options) *Services {
	if pub == nil {
		pub = events.Discard{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	opts = opts.withDefaults()
	notify := &notifier{pub: pub, logger: logger}

	components := NewComponentService(repos, notify, logger, opts)
	hierarchy := NewHierarchyService(repos, notify, logger)
	suppliers := NewSupplierService(repos)
	files := NewFileService(repos, store, notify, logger)
	exporter := NewExportService(repos)

	return &Services{
		Component:   components,
		Hierarchy:   hierarchy,
		Supplier:    suppliers,
		File:        files,
		Material:    NewMaterialService(repos.Material),
		Requirement: NewRequirementService(repos.Requirement),
		Import:      NewImportService(repos, notify, logger, opts),
		Export:      exporter,
		Library:     NewLibrary(repos, store, notify, logger, components, hierarchy, suppliers),
	}
}

// notifier publishes events after a committed change. Delivery failures are
// logged and never fail the operation.
type notifier struct {
	pub    events.Publisher
	logger *zap.Logger
}

func (n *notifier) emit(ctx context.Context, eventType string, data interface{}) {
	if err := n.pub.Publish(ctx, events.New(eventType, data)); err != nil {
		n.logger.Warn("Publish event failed", zap.String("event", eventType), zap.Error(err))
	}
}

// notFound wraps ErrNotFound with the kind and id that were looked up.
func notFound(kind, id string) error {
	return fmt.Errorf("%s %s: %w", kind, id, ErrNotFound)
}
