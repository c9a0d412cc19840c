package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/GTDGit/ultra_import/internal/catalog"
	"github.com/GTDGit/ultra_import/internal/utils"
	"github.com/GTDGit/ultra_import/pkg/ultra"
)

// --- Mocks ---

type mockSink struct {
	mock.Mock
}

func (m *mockSink) Save(ctx context.Context, path string, data []byte) error {
	args := m.Called(ctx, path, data)
	return args.Error(0)
}

type mockCommitter struct {
	mock.Mock
}

func (m *mockCommitter) CommitReceivingData(ctx context.Context, service string) (bool, error) {
	args := m.Called(ctx, service)
	return args.Bool(0), args.Error(1)
}

type stubLocker struct {
	err      error
	locked   int
	unlocked int
}

func (l *stubLocker) Lock(context.Context) (func(context.Context) error, error) {
	if l.err != nil {
		return nil, l.err
	}
	l.locked++
	return func(context.Context) error {
		l.unlocked++
		return nil
	}, nil
}

// --- Test Helpers ---

const (
	exportCategories = `<root><nomenclatureType><UUID>3</UUID><name>Shoes</name></nomenclatureType></root>`
	exportBrands     = `<root><brand><UUID>b1</UUID><name>Unused</name></brand></root>`
	exportProducts   = `<root><nomenclature><UUID>p1</UUID><code>SKU1</code><name>Prod1</name><fullName>Prod1 Full</fullName>
<nomenclatureType>3</nomenclatureType><imageList><image><pathGlobal>https://example.com/p1.png</pathGlobal></image></imageList>
<characteristicList><characteristic><UUID>c1</UUID><name>Size M</name>
<imageList><image><pathGlobal>https://example.com/c1.png</pathGlobal></image></imageList>
<propertyList>
<propertyValue><property><name>Color</name></property><value><name>Red</name><type>string</type></value></propertyValue>
<propertyValue><property><name>Weight</name></property><value><simpleValue>10</simpleValue><type>number</type></value></propertyValue>
</propertyList></characteristic></characteristicList></nomenclature></root>`
	exportPrices   = `<root><price><UUID>p1</UUID><Characteristic>c1</Characteristic><Price>10.50</Price></price></root>`
	exportBalances = `<root><balance><UUID>p1</UUID><Characteristic>c1</Characteristic><quantity>7</quantity></balance></root>`
)

func scenarioSession() *fakeSession {
	return &fakeSession{results: map[string]*ultra.DataResult{
		"req-NOMENCLATURETYPELIST": {Message: "OK", Data: exportCategories},
		"req-BRAND":                {Message: "OK", Data: exportBrands},
		"req-NOMENCLATURE":         {Message: "OK", Data: exportProducts},
		"req-PRICELIST":            {Message: "OK", Data: exportPrices},
		"req-BALANCE":              {Message: "OK", Data: exportBalances},
	}}
}

func newTestExportService(session *fakeSession, sink Sink, locker Locker, committer Committer, commit bool) *ExportService {
	fetcher := newTestCoordinator(session, 3, &sleepRecorder{})
	builder := &catalog.Builder{
		URLTemplate: "https://example.com/product/{code}",
		Vendor:      "Ultra",
		Now:         func() time.Time { return time.Date(2024, 1, 2, 3, 4, 0, 0, time.UTC) },
	}
	return NewExportService(fetcher, builder, sink, locker, committer, ExportOptions{
		DefaultOutputPath: "storage/app/ultra/catalog.xml",
		CommitAfterExport: commit,
	})
}

// --- Tests ---

func TestExport_WritesCatalogToDefaultPath(t *testing.T) {
	session := scenarioSession()
	sink := new(mockSink)
	locker := &stubLocker{}
	var written []byte
	sink.On("Save", mock.Anything, "storage/app/ultra/catalog.xml", mock.Anything).
		Run(func(args mock.Arguments) { written = args.Get(2).([]byte) }).
		Return(nil)

	svc := newTestExportService(session, sink, locker, nil, false)
	res, err := svc.Export(context.Background(), ExportRequest{FullSync: true})

	require.NoError(t, err)
	assert.Equal(t, "storage/app/ultra/catalog.xml", res.Path)
	assert.True(t, res.FullSync)
	assert.NotEmpty(t, res.RunID)
	assert.Equal(t, catalog.Stats{Categories: 1, Products: 1, Offers: 1}, res.Stats)
	assert.Equal(t, "Catalog successfully exported to storage/app/ultra/catalog.xml", res.String())

	assert.Equal(t, []string{"NOMENCLATURETYPELIST", "BRAND", "NOMENCLATURE", "PRICELIST", "BALANCE"}, session.requests)
	assert.Equal(t, []bool{true, true, true, true, true}, session.fullSync)

	doc := string(written)
	assert.True(t, strings.HasPrefix(doc, "<?xml"))
	assert.Contains(t, doc, `<yml_catalog date="2024-01-02 03:04">`)
	assert.Contains(t, doc, `id="SKU1-c1"`)
	assert.Contains(t, doc, `price="10.50"`)
	assert.Contains(t, doc, `quantity="7"`)

	assert.Equal(t, 1, locker.locked)
	assert.Equal(t, 1, locker.unlocked)
	sink.AssertExpectations(t)
}

func TestExport_OutputPathOverride(t *testing.T) {
	sink := new(mockSink)
	sink.On("Save", mock.Anything, "/tmp/custom.xml", mock.Anything).Return(nil)

	res, err := newTestExportService(scenarioSession(), sink, nil, nil, false).
		Export(context.Background(), ExportRequest{OutputPath: "/tmp/custom.xml"})

	require.NoError(t, err)
	assert.Equal(t, "/tmp/custom.xml", res.Path)
	sink.AssertExpectations(t)
}

func TestExport_RemoteFailureAbortsBeforeSink(t *testing.T) {
	session := scenarioSession()
	session.results["req-PRICELIST"] = &ultra.DataResult{Message: "Service unavailable"}
	sink := new(mockSink)
	locker := &stubLocker{}

	_, err := newTestExportService(session, sink, locker, nil, false).Export(context.Background(), ExportRequest{})

	require.Error(t, err)
	assert.True(t, errors.Is(err, utils.ErrRemoteService))
	assert.Equal(t, []string{"NOMENCLATURETYPELIST", "BRAND", "NOMENCLATURE", "PRICELIST"}, session.requests)
	sink.AssertNotCalled(t, "Save", mock.Anything, mock.Anything, mock.Anything)
	assert.Equal(t, 1, locker.unlocked)
}

func TestExport_ParseFailureAbortsBeforeSink(t *testing.T) {
	session := scenarioSession()
	session.results["req-NOMENCLATURE"] = &ultra.DataResult{Message: "OK", Data: "<root><nomenclature>"}
	sink := new(mockSink)

	_, err := newTestExportService(session, sink, nil, nil, false).Export(context.Background(), ExportRequest{})

	require.Error(t, err)
	assert.True(t, errors.Is(err, utils.ErrParse))
	assert.Contains(t, err.Error(), "products")
	sink.AssertNotCalled(t, "Save", mock.Anything, mock.Anything, mock.Anything)
}

func TestExport_SinkErrorPropagates(t *testing.T) {
	sinkErr := errors.New("disk full")
	sink := new(mockSink)
	sink.On("Save", mock.Anything, mock.Anything, mock.Anything).Return(sinkErr)

	_, err := newTestExportService(scenarioSession(), sink, nil, nil, false).Export(context.Background(), ExportRequest{})

	assert.ErrorIs(t, err, sinkErr)
}

func TestExport_LockHeld(t *testing.T) {
	session := scenarioSession()
	sink := new(mockSink)

	_, err := newTestExportService(session, sink, &stubLocker{err: utils.ErrExportInProgress}, nil, false).
		Export(context.Background(), ExportRequest{})

	assert.ErrorIs(t, err, utils.ErrExportInProgress)
	assert.Empty(t, session.requests)
	sink.AssertNotCalled(t, "Save", mock.Anything, mock.Anything, mock.Anything)
}

func TestExport_CommitsIncrementalRuns(t *testing.T) {
	sink := new(mockSink)
	sink.On("Save", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	committer := new(mockCommitter)
	committer.On("CommitReceivingData", mock.Anything, "NOMENCLATURETYPELIST").Return(true, nil)
	committer.On("CommitReceivingData", mock.Anything, "BRAND").Return(false, nil)
	committer.On("CommitReceivingData", mock.Anything, "NOMENCLATURE").Return(false, errors.New("fault"))
	committer.On("CommitReceivingData", mock.Anything, "PRICELIST").Return(true, nil)
	committer.On("CommitReceivingData", mock.Anything, "BALANCE").Return(true, nil)

	_, err := newTestExportService(scenarioSession(), sink, nil, committer, true).
		Export(context.Background(), ExportRequest{FullSync: false})

	require.NoError(t, err)
	committer.AssertNumberOfCalls(t, "CommitReceivingData", 5)
}

func TestExport_FullSyncSkipsCommit(t *testing.T) {
	sink := new(mockSink)
	sink.On("Save", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	committer := new(mockCommitter)

	_, err := newTestExportService(scenarioSession(), sink, nil, committer, true).
		Export(context.Background(), ExportRequest{FullSync: true})

	require.NoError(t, err)
	committer.AssertNotCalled(t, "CommitReceivingData", mock.Anything, mock.Anything)
}
