package validation

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/blues/nftsender/internal/model"
	"github.com/blues/nftsender/internal/provider"
)

type fakeReader struct {
	mu          sync.Mutex
	collections map[string]*provider.Collection
	templates   map[string][]provider.Template
	err         error
	calls       int
}

func (f *fakeReader) GetCollection(ctx context.Context, apiKey, id string) (*provider.Collection, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	c, ok := f.collections[id]
	if !ok {
		return nil, &provider.APIError{Status: http.StatusNotFound, Message: "Collection not found"}
	}
	return c, nil
}

func (f *fakeReader) ListTemplates(ctx context.Context, apiKey, id string) ([]provider.Template, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.templates[id], nil
}

func (f *fakeReader) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func newFakeReader() *fakeReader {
	return &fakeReader{
		collections: map[string]*provider.Collection{
			"col-1": {ID: "col-1", Metadata: provider.Metadata{Name: "Drop", ImageURL: "https://img"}, OnChain: provider.OnChain{Chain: "polygon-amoy"}},
			"sol-1": {ID: "sol-1", Chain: "Solana"},
		},
		templates: map[string][]provider.Template{
			"col-1": {{TemplateId: "tpl-1", Metadata: provider.Metadata{Name: "Gold", Image: "https://gold"}}},
		},
	}
}

func TestChainFromProvider(t *testing.T) {
	cases := map[string]model.Blockchain{
		"polygon-amoy":     model.BlockchainPolygonAmoy,
		"Polygon":          model.BlockchainPolygonAmoy,
		"ethereum-sepolia": model.BlockchainEthereumSepolia,
		"solana":           model.BlockchainSolana,
		"chiliz-spicy":     model.BlockchainChiliz,
		"base-sepolia":     model.BlockchainChiliz,
		"":                 model.BlockchainChiliz,
	}
	for raw, want := range cases {
		if got := ChainFromProvider(raw); got != want {
			t.Errorf("ChainFromProvider(%q) = %s; want %s", raw, got, want)
		}
	}
}

func TestValidate_CollectionOnly(t *testing.T) {
	v := NewValidator(newFakeReader())
	tpl, err := v.Validate(context.Background(), "sol-1", "", "key")
	if err != nil {
		t.Fatalf("Validate() error: %v", err)
	}
	if tpl.Chain != model.BlockchainSolana || tpl.ReadableChain != "Solana" || !tpl.CompatibleWallets.IsSolana {
		t.Errorf("Validate() = %+v", tpl)
	}
	if tpl.CompatibleWallets.ExpectedAddressType != "solana" {
		t.Errorf("ExpectedAddressType = %s", tpl.CompatibleWallets.ExpectedAddressType)
	}
}

func TestValidate_TemplateWithinCollection(t *testing.T) {
	v := NewValidator(newFakeReader())
	tpl, err := v.Validate(context.Background(), "tpl-1", "col-1", "key")
	if err != nil {
		t.Fatalf("Validate() error: %v", err)
	}
	if tpl.Name != "Gold" || tpl.Image != "https://gold" || tpl.Chain != model.BlockchainPolygonAmoy {
		t.Errorf("Validate() = %+v", tpl)
	}

	if _, err := v.Validate(context.Background(), "tpl-x", "col-1", "key"); !errors.Is(err, ErrTemplateNotFound) {
		t.Errorf("Validate(unknown template) error = %v; want ErrTemplateNotFound", err)
	}
}

func TestValidate_Errors(t *testing.T) {
	reader := newFakeReader()
	v := NewValidator(reader)
	ctx := context.Background()

	if _, err := v.Validate(ctx, "tpl-1", "", ""); !errors.Is(err, ErrMissingParams) {
		t.Errorf("Validate(no key) error = %v; want ErrMissingParams", err)
	}
	if _, err := v.Validate(ctx, "", "", "key"); !errors.Is(err, ErrMissingParams) {
		t.Errorf("Validate(no ids) error = %v; want ErrMissingParams", err)
	}
	if reader.callCount() != 0 {
		t.Errorf("calls = %d; want 0 for missing params", reader.callCount())
	}

	var apiErr *provider.APIError
	if _, err := v.Validate(ctx, "nope", "", "key"); !errors.As(err, &apiErr) {
		t.Errorf("Validate(unknown) error = %v; want APIError", err)
	}
}

func TestDebouncer_OnlyLastRuns(t *testing.T) {
	d := NewDebouncer(30 * time.Millisecond)
	var runs int32
	var last int32
	done := make(chan struct{}, 1)
	for i := 1; i <= 5; i++ {
		n := int32(i)
		d.Trigger("p", func() {
			atomic.AddInt32(&runs, 1)
			atomic.StoreInt32(&last, n)
			done <- struct{}{}
		})
		time.Sleep(5 * time.Millisecond)
	}

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("debounced function never ran")
	}
	time.Sleep(60 * time.Millisecond)
	if got := atomic.LoadInt32(&runs); got != 1 {
		t.Errorf("runs = %d; want 1", got)
	}
	if got := atomic.LoadInt32(&last); got != 5 {
		t.Errorf("last = %d; want 5", got)
	}
}

func TestDebouncer_Cancel(t *testing.T) {
	d := NewDebouncer(20 * time.Millisecond)
	var runs int32
	d.Trigger("p", func() { atomic.AddInt32(&runs, 1) })
	d.Cancel("p")
	time.Sleep(50 * time.Millisecond)
	if atomic.LoadInt32(&runs) != 0 {
		t.Error("cancelled trigger ran")
	}
}

func TestWatcher_Check(t *testing.T) {
	reader := newFakeReader()
	w := NewWatcher(NewValidator(reader), 10*time.Millisecond)
	defer w.Stop()

	if got := w.Get("p1"); got.State != StateIdle {
		t.Errorf("Get(unknown) = %s; want idle", got.State)
	}

	ok := w.Check(context.Background(), model.ProjectModel{Id: "p1", ApiKey: "k", TemplateId: "tpl-1", CollectionId: "col-1"})
	if ok.State != StateValid || ok.Template == nil {
		t.Errorf("Check() = %+v; want valid", ok)
	}

	reader.err = errors.New("dial tcp: timeout")
	bad := w.Check(context.Background(), model.ProjectModel{Id: "p1", ApiKey: "k", TemplateId: "col-1"})
	if bad.State != StateInvalid || bad.Reason == "" {
		t.Errorf("Check() = %+v; want invalid with reason", bad)
	}
	if w.Get("p1").State != StateInvalid {
		t.Errorf("Get() = %s; want invalid", w.Get("p1").State)
	}

	w.Forget("p1")
	if w.Get("p1").State != StateIdle {
		t.Error("Forget() did not reset state")
	}
}

func TestWatcher_TriggerIsDebounced(t *testing.T) {
	reader := newFakeReader()
	w := NewWatcher(NewValidator(reader), 20*time.Millisecond)
	defer w.Stop()

	p := model.ProjectModel{Id: "p2", ApiKey: "k", TemplateId: "col-1"}
	for i := 0; i < 4; i++ {
		w.Trigger(p)
	}

	deadline := time.Now().Add(time.Second)
	for w.Get("p2").State != StateValid && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if w.Get("p2").State != StateValid {
		t.Fatalf("state = %s; want valid", w.Get("p2").State)
	}
	if reader.callCount() != 1 {
		t.Errorf("provider calls = %d; want 1", reader.callCount())
	}
}
