package query

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/asaidimu/go-events"
	"github.com/asaidimu/go-paginate/core/schema"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrEventsDisabled is returned when subscribing to a paginator created with
// events turned off.
var ErrEventsDisabled = errors.New("events are disabled for this paginator")

// Config configures a Paginator.
type Config struct {
	// Logger receives debug output for every call. Nil disables logging.
	Logger *zap.Logger
	// DefaultLimit applies when Options.Limit is not positive.
	DefaultLimit int
	// MaxLimit caps Options.Limit when positive.
	MaxLimit int
	// DisableEvents turns off lifecycle events.
	DisableEvents bool
	// Metrics receives per-call counters and latencies. Nil disables metrics.
	Metrics *Metrics
}

// DefaultConfig returns the configuration used by the package-level Paginate.
func DefaultConfig() Config {
	return Config{DefaultLimit: 10}
}

// Paginator filters, sorts and pages in-memory collections. It is safe for
// concurrent use; each call works on its own copy of the matched records and
// never modifies the input data.
type Paginator struct {
	config   Config
	logger   *zap.Logger
	executor *FilterExecutor
	bus      *events.TypedEventBus[PaginationEvent]

	mu            sync.RWMutex
	schemas       map[string]*schema.SchemaDefinition
	subscriptions map[string]*SubscriptionInfo
}

// NewPaginator creates a new Paginator instance.
func NewPaginator(config Config) (*Paginator, error) {
	if config.Logger == nil {
		config.Logger = zap.NewNop()
	}
	if config.DefaultLimit <= 0 {
		config.DefaultLimit = DefaultConfig().DefaultLimit
	}
	if config.MaxLimit < 0 {
		return nil, fmt.Errorf("max limit cannot be negative: %d", config.MaxLimit)
	}
	if config.MaxLimit > 0 && config.DefaultLimit > config.MaxLimit {
		config.DefaultLimit = config.MaxLimit
	}

	p := &Paginator{
		config:        config,
		logger:        config.Logger,
		executor:      NewFilterExecutor(config.Logger),
		schemas:       make(map[string]*schema.SchemaDefinition),
		subscriptions: make(map[string]*SubscriptionInfo),
	}

	if !config.DisableEvents {
		bus, err := events.NewTypedEventBus[PaginationEvent](events.DefaultConfig())
		if err != nil {
			return nil, fmt.Errorf("failed to create event bus: %w", err)
		}
		p.bus = bus
	}
	return p, nil
}

// RegisterSchema attaches a schema to the collection named by sc.Name. Filters
// on that collection are then checked against it before compilation.
func (p *Paginator) RegisterSchema(sc *schema.SchemaDefinition) error {
	if sc == nil {
		return fmt.Errorf("schema cannot be nil")
	}
	if err := sc.Validate(); err != nil {
		return fmt.Errorf("invalid schema for collection '%s': %w", sc.Name, err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.schemas[sc.Name] = sc
	p.logger.Info("Registered schema", zap.String("collection", sc.Name), zap.String("version", sc.Version))
	return nil
}

// UnregisterSchema removes the schema of a collection, if any.
func (p *Paginator) UnregisterSchema(collection string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.schemas, collection)
}

func (p *Paginator) schemaFor(collection string) *schema.SchemaDefinition {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.schemas[collection]
}

// Subscribe registers a callback for one event type and returns the
// subscription ID used to unsubscribe.
func (p *Paginator) Subscribe(options RegisterSubscriptionOptions) (string, error) {
	if p.bus == nil {
		return "", ErrEventsDisabled
	}
	if options.Callback == nil {
		return "", fmt.Errorf("callback cannot be nil")
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	unsubscribe := p.bus.Subscribe(string(options.Event), options.Callback)
	id := uuid.New().String()
	p.subscriptions[id] = &SubscriptionInfo{
		Event:       options.Event,
		Label:       options.Label,
		Unsubscribe: unsubscribe,
	}
	p.logger.Info("Registered subscription", zap.String("id", id), zap.String("event", string(options.Event)))
	return id, nil
}

// Unsubscribe removes a subscription. Unknown IDs are ignored.
func (p *Paginator) Unsubscribe(id string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	info := p.subscriptions[id]
	if info != nil {
		info.Unsubscribe()
		delete(p.subscriptions, id)
	}
}

func (p *Paginator) emitEvent(event PaginationEvent) {
	if p.bus != nil {
		p.bus.Emit(string(event.Type), event)
	}
}

// Paginate selects the records of data[collection] matching opts.Filter,
// orders them by opts.Sort and returns the requested page. Nil options return
// the first page of the unfiltered collection.
func (p *Paginator) Paginate(ctx context.Context, collection string, data any, opts *Options) (*Result, error) {
	if opts == nil {
		opts = &Options{}
	}
	queryID := uuid.New().String()
	startTime := time.Now()

	p.emitEvent(createEvent(PaginateStart, queryID, collection, opts, nil, nil, nil, startTime))

	result, queries, err := p.paginate(ctx, queryID, collection, data, opts)
	if err != nil {
		p.config.Metrics.observe(collection, startTime, nil, err)
		p.logger.Debug("Pagination failed",
			zap.String("queryId", queryID),
			zap.String("collection", collection),
			zap.Error(err),
		)
		errStr := err.Error()
		p.emitEvent(createEvent(PaginateFailed, queryID, collection, opts, queries, nil, &errStr, startTime))
		return nil, err
	}

	p.config.Metrics.observe(collection, startTime, result, nil)
	p.emitEvent(createEvent(PaginateSuccess, queryID, collection, opts, queries, result, nil, startTime))
	return result, nil
}

// PaginateSource loads the collection described by sc from src and pages it.
func (p *Paginator) PaginateSource(ctx context.Context, src DocumentSource, sc *schema.SchemaDefinition, opts *Options) (*Result, error) {
	if sc == nil {
		return nil, fmt.Errorf("schema cannot be nil")
	}
	data, err := src.Load(ctx, sc)
	if err != nil {
		return nil, fmt.Errorf("failed to load collection '%s': %w", sc.Name, err)
	}
	return p.Paginate(ctx, sc.Name, data, opts)
}

func (p *Paginator) paginate(ctx context.Context, queryID, collection string, data any, opts *Options) (*Result, []string, error) {
	page, limit := p.paging(opts)

	compiler := NewCompiler(p.schemaFor(collection))
	queries, err := compiler.Queries(collection, opts.Filter)
	if err != nil {
		return nil, nil, err
	}
	p.logger.Debug("Compiled filter",
		zap.String("queryId", queryID),
		zap.String("collection", collection),
		zap.Strings("queries", queries),
	)

	matches, err := p.executor.Execute(ctx, data, queries)
	if err != nil {
		return nil, queries, err
	}

	items := make([]schema.Document, len(matches))
	for i, m := range matches {
		doc, ok := toDocument(m.Value)
		if !ok {
			return nil, queries, fmt.Errorf("%w: element %s is %T, not a record", ErrInvalidCollection, m.Path, m.Value)
		}
		items[i] = doc
	}

	sorted, err := SortDocuments(items, opts.Sort)
	if err != nil {
		return nil, queries, err
	}

	total := len(sorted)
	result := &Result{
		Items:       SlicePage(sorted, page, limit),
		Total:       total,
		PageCount:   PageCount(total, limit),
		CurrentPage: page,
		Limit:       limit,
	}
	p.logger.Debug("Paginated collection",
		zap.String("queryId", queryID),
		zap.Int("total", result.Total),
		zap.Int("page", page),
		zap.Int("limit", limit),
		zap.Int("items", len(result.Items)),
	)
	return result, queries, nil
}

// paging resolves the page and limit a call uses.
func (p *Paginator) paging(opts *Options) (page, limit int) {
	page = max(opts.Page, 1)
	limit = opts.Limit
	if limit <= 0 {
		limit = p.config.DefaultLimit
	}
	if p.config.MaxLimit > 0 && limit > p.config.MaxLimit {
		limit = p.config.MaxLimit
	}
	return page, limit
}

func toDocument(v any) (schema.Document, bool) {
	switch m := v.(type) {
	case schema.Document:
		return m, true
	case map[string]any:
		return m, true
	}
	return nil, false
}

var defaultPaginator = sync.OnceValues(func() (*Paginator, error) {
	return NewPaginator(DefaultConfig())
})

// Paginate pages a collection with the default configuration.
func Paginate(ctx context.Context, collection string, data any, opts *Options) (*Result, error) {
	p, err := defaultPaginator()
	if err != nil {
		return nil, err
	}
	return p.Paginate(ctx, collection, data, opts)
}
