package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/afero"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/vladislavdragonenkov/costumeshop/internal/domain"
	"github.com/vladislavdragonenkov/costumeshop/internal/service/catalog"
	grpcsvc "github.com/vladislavdragonenkov/costumeshop/internal/service/grpc"
	"github.com/vladislavdragonenkov/costumeshop/internal/storage/memory"
	costumeshopv1 "github.com/vladislavdragonenkov/costumeshop/proto/costumeshop/v1"
)

// fakeCatalogClient отвечает заготовленными функциями; не заданный метод — ошибка теста.
type fakeCatalogClient struct {
	costumeshopv1.CostumeShopServiceClient

	shopsFn    func(*structpb.Struct) (*structpb.Struct, error)
	shopFn     func(*structpb.Struct) (*structpb.Struct, error)
	costumesFn func(*structpb.Struct) (*structpb.Struct, error)
	offersFn   func(*structpb.Struct) (*structpb.Struct, error)
}

func (f *fakeCatalogClient) GetShops(_ context.Context, in *structpb.Struct, _ ...grpc.CallOption) (*structpb.Struct, error) {
	if f.shopsFn == nil {
		return nil, errors.New("unexpected GetShops call")
	}
	return f.shopsFn(in)
}

func (f *fakeCatalogClient) GetShop(_ context.Context, in *structpb.Struct, _ ...grpc.CallOption) (*structpb.Struct, error) {
	if f.shopFn == nil {
		return nil, errors.New("unexpected GetShop call")
	}
	return f.shopFn(in)
}

func (f *fakeCatalogClient) GetCostumes(_ context.Context, in *structpb.Struct, _ ...grpc.CallOption) (*structpb.Struct, error) {
	if f.costumesFn == nil {
		return nil, errors.New("unexpected GetCostumes call")
	}
	return f.costumesFn(in)
}

func (f *fakeCatalogClient) GetOffers(_ context.Context, in *structpb.Struct, _ ...grpc.CallOption) (*structpb.Struct, error) {
	if f.offersFn == nil {
		return nil, errors.New("unexpected GetOffers call")
	}
	return f.offersFn(in)
}

func listResponse(t *testing.T, key string, records ...map[string]any) *structpb.Struct {
	t.Helper()
	items := make([]any, 0, len(records))
	for _, rec := range records {
		items = append(items, rec)
	}
	out, err := structpb.NewStruct(map[string]any{key: items})
	if err != nil {
		t.Fatalf("build response: %v", err)
	}
	return out
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		in      string
		want    loadMode
		wantErr bool
	}{
		{in: "list", want: modeList},
		{in: " browse ", want: modeBrowse},
		{in: "search", want: modeSearch},
		{in: "create", wantErr: true},
	}
	for _, tt := range tests {
		got, err := parseMode(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Fatalf("parseMode(%q) expected error", tt.in)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Fatalf("parseMode(%q) = %q, %v; want %q", tt.in, got, err, tt.want)
		}
	}
}

func TestParseConfig(t *testing.T) {
	cfg, err := parseConfig(nil, &bytes.Buffer{})
	if err != nil {
		t.Fatalf("defaults: %v", err)
	}
	if cfg.addr != "localhost:50051" || cfg.total != 400 || cfg.mode != modeList || cfg.timeout != 5*time.Second || cfg.pageSize != 10 {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.totalSet {
		t.Fatal("totalSet must be false without -total")
	}

	cfg, err = parseConfig([]string{"-mode", "browse", "-duration", "2s", "-total", "50", "-page-size", "3"}, &bytes.Buffer{})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cfg.mode != modeBrowse || cfg.duration != 2*time.Second || !cfg.totalSet || cfg.total != 50 || cfg.pageSize != 3 {
		t.Fatalf("unexpected config: %+v", cfg)
	}

	invalid := map[string][]string{
		"timeout":        {"-timeout", "soon"},
		"duration":       {"-duration", "later"},
		"negative":       {"-duration", "-1s"},
		"mode":           {"-mode", "create-pay"},
		"total":          {"-total", "0"},
		"total+duration": {"-duration", "1s", "-total", "0"},
		"concurrency":    {"-concurrency", "0"},
		"connections":    {"-connections", "0"},
		"zero timeout":   {"-timeout", "0s"},
		"page size":      {"-page-size", "0"},
		"empty search":   {"-mode", "search", "-search", " "},
		"unknown flag":   {"-currency", "USD"},
	}
	for name, args := range invalid {
		if _, err := parseConfig(args, &bytes.Buffer{}); err == nil {
			t.Fatalf("%s: expected error for %v", name, args)
		}
	}
}

func TestDispatchJobs(t *testing.T) {
	jobs := make(chan int, 10)
	dispatchJobs(jobs, config{total: 5})
	var got []int
	for id := range jobs {
		got = append(got, id)
	}
	if len(got) != 5 || got[4] != 4 {
		t.Fatalf("count mode dispatched %v", got)
	}

	jobs = make(chan int, 10)
	dispatchJobs(jobs, config{duration: time.Second, total: 3, totalSet: true})
	count := 0
	for range jobs {
		count++
	}
	if count != 3 {
		t.Fatalf("duration mode with max total dispatched %d jobs", count)
	}

	jobs = make(chan int)
	done := make(chan struct{})
	go func() {
		dispatchJobs(jobs, config{duration: 20 * time.Millisecond})
		close(done)
	}()
	for range jobs {
	}
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("duration mode did not stop")
	}
}

func TestCollectorAndReport(t *testing.T) {
	col := newCollector()
	col.record(scenarioMethod, 10*time.Millisecond, codes.OK)
	col.record(scenarioMethod, 30*time.Millisecond, codes.NotFound)
	col.record("GetShops", 5*time.Millisecond, codes.OK)
	col.addRecords(7)

	snap, ok := col.snapshot("GetShops")
	if !ok || snap.Calls != 1 || snap.Codes["OK"] != 1 {
		t.Fatalf("unexpected snapshot: %+v %v", snap, ok)
	}
	if _, ok := col.snapshot("GetOffer"); ok {
		t.Fatal("unknown method must not have a snapshot")
	}

	result := col.buildReport(modeList, time.Now(), 2*time.Second)
	if result.TotalScenarios != 2 || result.FailedScenarios != 1 || result.ErrorRate != 0.5 {
		t.Fatalf("unexpected scenario totals: %+v", result)
	}
	if result.RPS != 1 || result.RecordsRead != 7 || result.Mode != "list" {
		t.Fatalf("unexpected report: %+v", result)
	}
	if result.ScenarioLatencyMs.Min != 10 || result.ScenarioLatencyMs.Max != 30 || result.ScenarioLatencyMs.Avg != 20 {
		t.Fatalf("unexpected latency: %+v", result.ScenarioLatencyMs)
	}
	if result.Methods[scenarioMethod].Codes["NotFound"] != 1 {
		t.Fatalf("codes not copied: %+v", result.Methods)
	}
}

func TestUtilityFunctions(t *testing.T) {
	if got := percentile([]float64{1, 2, 3, 4}, 50); got != 2.5 {
		t.Fatalf("percentile interpolation = %v", got)
	}
	if got := percentile([]float64{7}, 99); got != 7 {
		t.Fatalf("single percentile = %v", got)
	}
	if got := percentile(nil, 50); got != 0 {
		t.Fatalf("empty percentile = %v", got)
	}
	if got := ratio(1, 0); got != 0 {
		t.Fatalf("ratio with zero total = %v", got)
	}
	if (buildLatencySummary(nil) != latencySummary{}) {
		t.Fatal("empty summary must be zero")
	}
	if got := grpcCode(status.Error(codes.NotFound, "x")); got != codes.NotFound {
		t.Fatalf("grpcCode = %v", got)
	}
	if got := grpcCode(nil); got != codes.OK {
		t.Fatalf("grpcCode(nil) = %v", got)
	}

	for _, tt := range []struct {
		cfg  config
		want string
	}{
		{cfg: config{total: 10}, want: "count:10"},
		{cfg: config{duration: time.Minute}, want: "duration:1m0s"},
		{cfg: config{duration: time.Minute, total: 5, totalSet: true}, want: "duration:1m0s,max-total:5"},
	} {
		if got := runTarget(tt.cfg); got != tt.want {
			t.Fatalf("runTarget(%+v) = %q, want %q", tt.cfg, got, tt.want)
		}
	}
}

func TestWriteJSONReport(t *testing.T) {
	fsys := afero.NewMemMapFs()
	if err := writeJSONReport(fsys, "browse.json", report{Mode: "browse", TotalScenarios: 3}); err != nil {
		t.Fatalf("write: %v", err)
	}
	raw, err := afero.ReadFile(fsys, "browse.json")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var decoded report
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded.Mode != "browse" || decoded.TotalScenarios != 3 {
		t.Fatalf("unexpected report: %+v", decoded)
	}

	for _, bad := range []string{".", "/", "..", "../out.json"} {
		if err := writeJSONReport(fsys, bad, report{}); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}

func TestScenarios(t *testing.T) {
	shop := map[string]any{"SHOP_ID": 1, "SHOP_NAME": "Maskarada"}
	costume := map[string]any{"COSTUME_ID": "c1", "SHOP_ID": 1}

	var costumeReq *structpb.Struct
	client := &fakeCatalogClient{
		shopsFn: func(*structpb.Struct) (*structpb.Struct, error) { return listResponse(t, "shops", shop), nil },
		shopFn: func(in *structpb.Struct) (*structpb.Struct, error) {
			if in.GetFields()["SHOP_ID"].GetNumberValue() != 1 {
				return nil, status.Error(codes.NotFound, "Shop not found")
			}
			return structpb.NewStruct(shop)
		},
		costumesFn: func(in *structpb.Struct) (*structpb.Struct, error) {
			costumeReq = in
			return listResponse(t, "costumes", costume), nil
		},
		offersFn: func(*structpb.Struct) (*structpb.Struct, error) { return listResponse(t, "offers"), nil },
	}

	cfg := config{mode: modeBrowse, timeout: time.Second, pageSize: 5}
	col := newCollector()
	ids, err := discoverShops(client, cfg.timeout, col)
	if err != nil || len(ids) != 1 || ids[0] != 1 {
		t.Fatalf("discoverShops = %v, %v", ids, err)
	}

	if err := runScenario(client, cfg, 0, ids, col); err != nil {
		t.Fatalf("browse: %v", err)
	}
	filter := costumeReq.GetFields()["filter"].GetStructValue().AsMap()
	if filter["field"] != "SHOP_ID" || filter["value"] != "1" || filter["operator"] != "equals" {
		t.Fatalf("unexpected costume filter: %v", filter)
	}

	if err := runScenario(client, cfg, 0, []int64{9}, col); status.Code(err) != codes.NotFound {
		t.Fatalf("browse missing shop: %v", err)
	}

	cfg.mode = modeList
	for i := 0; i < 3; i++ {
		if err := runScenario(client, cfg, i, nil, col); err != nil {
			t.Fatalf("list %d: %v", i, err)
		}
	}

	cfg.mode = modeSearch
	cfg.search = "Pir"
	if err := runScenario(client, cfg, 0, nil, col); err != nil {
		t.Fatalf("search: %v", err)
	}
	req, err := costumeshopv1.ParseListRequest(costumeReq)
	if err != nil {
		t.Fatalf("parse search request: %v", err)
	}
	if req.Filter == nil || req.Filter.Operator != "contains" || req.SortField != "AVAILABLE" || req.SortDirection != "DESC" {
		t.Fatalf("unexpected search request: %+v", req)
	}

	result := col.buildReport(modeList, time.Now(), time.Second)
	if result.TotalScenarios != 6 || result.FailedScenarios != 1 {
		t.Fatalf("unexpected totals: %+v", result)
	}
	if result.Methods["GetShops"].Calls != 2 || result.Methods["GetShop"].Failed != 1 {
		t.Fatalf("unexpected methods: %+v", result.Methods)
	}

	empty := &fakeCatalogClient{shopsFn: func(*structpb.Struct) (*structpb.Struct, error) { return listResponse(t, "shops"), nil }}
	if _, err := discoverShops(empty, time.Second, newCollector()); err == nil {
		t.Fatal("expected error without shops")
	}
}

func TestPrintReport(t *testing.T) {
	var out bytes.Buffer
	printReport(&out, report{
		TotalScenarios: 2,
		Methods: map[string]methodReport{
			scenarioMethod: {Calls: 2},
			"GetShops":     {Calls: 1},
			"GetCostumes":  {Calls: 1},
		},
	}, config{mode: modeList, total: 2})

	text := out.String()
	if !strings.Contains(text, "mode=list run=count:2") || !strings.Contains(text, "scenarios total=2") {
		t.Fatalf("missing header: %s", text)
	}
	if !strings.Contains(text, "METHOD") || strings.Index(text, "GetCostumes") > strings.Index(text, "GetShops") {
		t.Fatalf("methods must be sorted: %s", text)
	}
	if strings.Contains(text, "\n"+scenarioMethod+" ") {
		t.Fatalf("scenario must not be listed as a method: %s", text)
	}
}

func startCatalogServer(t *testing.T) string {
	t.Helper()
	ctx := context.Background()
	tables := memory.NewTableStore()
	if err := tables.WriteTable(ctx, "shops", domain.Table{
		Header: []string{"SHOP_ID", "SHOP_NAME", "CITY", "ADDRESS", "PHONE"},
		Rows:   [][]string{{"1", "Maskarada", "Kraków", "Rynek 1", "111"}},
	}); err != nil {
		t.Fatalf("seed shops: %v", err)
	}
	cat := catalog.New(tables)
	if err := cat.EnsureTables(ctx); err != nil {
		t.Fatalf("ensure tables: %v", err)
	}

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	server := grpc.NewServer()
	costumeshopv1.RegisterCostumeShopServiceServer(server, grpcsvc.NewCostumeShopService(cat, nil))
	go func() { _ = server.Serve(listener) }()
	t.Cleanup(server.Stop)
	return listener.Addr().String()
}

func TestRunSmoke(t *testing.T) {
	addr := startCatalogServer(t)
	output := filepath.Join(t.TempDir(), "report.json")

	var stdout, stderr bytes.Buffer
	code := run([]string{"-addr", addr, "-mode", "browse", "-total", "6", "-concurrency", "2", "-connections", "1", "-output", output}, &stdout, &stderr)
	if code != 0 {
		t.Fatalf("exit code %d, stderr: %s", code, stderr.String())
	}
	if !strings.Contains(stdout.String(), "mode=browse") || !strings.Contains(stdout.String(), "GetShop:") {
		t.Fatalf("unexpected output: %s", stdout.String())
	}
	if _, err := os.Stat(output); err != nil {
		t.Fatalf("report not written: %v", err)
	}

	stderr.Reset()
	if code := run([]string{"-mode", "nope"}, &stdout, &stderr); code != 1 {
		t.Fatalf("invalid config exit code %d", code)
	}
	if !strings.Contains(stderr.String(), "invalid config") {
		t.Fatalf("unexpected stderr: %s", stderr.String())
	}
}
