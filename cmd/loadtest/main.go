// Command loadtest нагружает gRPC API каталога костюмерной чтением и печатает сводку латентности.
//
//	go run ./cmd/loadtest -addr localhost:50051 -mode browse -duration 1m -concurrency 40
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/spf13/afero"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	costumeshopv1 "github.com/vladislavdragonenkov/costumeshop/proto/costumeshop/v1"
)

type loadMode string

const (
	// modeList — по одному постраничному списку на сценарий, коллекции по кругу.
	modeList loadMode = "list"
	// modeBrowse — карточка магазина, затем его костюмы и акции.
	modeBrowse loadMode = "browse"
	// modeSearch — поиск костюмов по подстроке имени с сортировкой по наличию.
	modeSearch loadMode = "search"
)

// discoveryLimit — сколько магазинов запрашивается при старте для режима browse.
const discoveryLimit = 100

type config struct {
	addr        string
	total       int
	totalSet    bool
	duration    time.Duration
	concurrency int
	connections int
	timeout     time.Duration
	mode        loadMode
	pageSize    int
	search      string
	outputPath  string
}

func parseConfig(args []string, output io.Writer) (config, error) {
	var (
		cfg           config
		modeValue     string
		timeoutValue  string
		durationValue string
	)

	fs := flag.NewFlagSet("loadtest", flag.ContinueOnError)
	fs.SetOutput(output)
	fs.StringVar(&cfg.addr, "addr", "localhost:50051", "gRPC target address")
	fs.IntVar(&cfg.total, "total", 400, "total scenarios to execute in count mode; in duration mode only used when explicitly set")
	fs.StringVar(&durationValue, "duration", "0s", "optional time-based run duration (e.g. 10m, 15m)")
	fs.IntVar(&cfg.concurrency, "concurrency", 40, "number of concurrent workers")
	fs.IntVar(&cfg.connections, "connections", 20, "number of gRPC client connections")
	fs.StringVar(&timeoutValue, "timeout", "5s", "per-RPC timeout")
	fs.StringVar(&modeValue, "mode", string(modeList), "load mode: list | browse | search")
	fs.IntVar(&cfg.pageSize, "page-size", 10, "limit sent with list requests")
	fs.StringVar(&cfg.search, "search", "a", "COSTUME_NAME substring for search mode")
	fs.StringVar(&cfg.outputPath, "output", "", "optional JSON report output file path")
	if err := fs.Parse(args); err != nil {
		return cfg, err
	}

	timeout, err := time.ParseDuration(strings.TrimSpace(timeoutValue))
	if err != nil {
		return cfg, fmt.Errorf("parse timeout: %w", err)
	}
	cfg.timeout = timeout

	duration, err := time.ParseDuration(strings.TrimSpace(durationValue))
	if err != nil {
		return cfg, fmt.Errorf("parse duration: %w", err)
	}
	cfg.duration = duration

	fs.Visit(func(f *flag.Flag) {
		if f.Name == "total" {
			cfg.totalSet = true
		}
	})

	mode, err := parseMode(modeValue)
	if err != nil {
		return cfg, err
	}
	cfg.mode = mode

	switch {
	case cfg.duration < 0:
		return cfg, errors.New("duration must be >= 0")
	case cfg.duration == 0 && cfg.total <= 0:
		return cfg, errors.New("total must be > 0 when duration is not set")
	case cfg.duration > 0 && cfg.totalSet && cfg.total <= 0:
		return cfg, errors.New("total must be > 0 when explicitly set with duration")
	case cfg.concurrency <= 0:
		return cfg, errors.New("concurrency must be > 0")
	case cfg.connections <= 0:
		return cfg, errors.New("connections must be > 0")
	case cfg.timeout <= 0:
		return cfg, errors.New("timeout must be > 0")
	case cfg.pageSize <= 0:
		return cfg, errors.New("page-size must be > 0")
	case cfg.mode == modeSearch && strings.TrimSpace(cfg.search) == "":
		return cfg, errors.New("search is required in search mode")
	}
	return cfg, nil
}

func parseMode(value string) (loadMode, error) {
	switch loadMode(strings.TrimSpace(value)) {
	case modeList:
		return modeList, nil
	case modeBrowse:
		return modeBrowse, nil
	case modeSearch:
		return modeSearch, nil
	default:
		return "", fmt.Errorf("unsupported mode: %s", value)
	}
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run возвращает код выхода: 0 — все сценарии успешны, 1 — ошибка конфигурации или неуспешные сценарии.
func run(args []string, stdout, stderr io.Writer) int {
	cfg, err := parseConfig(args, stderr)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "invalid config: %v\n", err)
		return 1
	}

	conns := make([]*grpc.ClientConn, 0, cfg.connections)
	clients := make([]costumeshopv1.CostumeShopServiceClient, 0, cfg.connections)
	defer func() {
		for _, conn := range conns {
			_ = conn.Close()
		}
	}()
	for i := 0; i < cfg.connections; i++ {
		conn, dialErr := grpc.NewClient(cfg.addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
		if dialErr != nil {
			_, _ = fmt.Fprintf(stderr, "failed to create grpc client connection: %v\n", dialErr)
			return 1
		}
		conns = append(conns, conn)
		clients = append(clients, costumeshopv1.NewCostumeShopServiceClient(conn))
	}

	col := newCollector()
	var shopIDs []int64
	if cfg.mode == modeBrowse {
		shopIDs, err = discoverShops(clients[0], cfg.timeout, col)
		if err != nil {
			_, _ = fmt.Fprintf(stderr, "failed to discover shops: %v\n", err)
			return 1
		}
	}

	startedAt := time.Now()
	jobs := make(chan int, cfg.concurrency*2)
	var failures int64
	var wg sync.WaitGroup

	for workerID := 0; workerID < cfg.concurrency; workerID++ {
		wg.Add(1)
		go func(cli costumeshopv1.CostumeShopServiceClient) {
			defer wg.Done()
			for id := range jobs {
				if runErr := runScenario(cli, cfg, id, shopIDs, col); runErr != nil {
					atomic.AddInt64(&failures, 1)
				}
			}
		}(clients[workerID%len(clients)])
	}

	dispatchJobs(jobs, cfg)
	wg.Wait()

	result := col.buildReport(cfg.mode, startedAt, time.Since(startedAt))
	if result.FailedScenarios == 0 && failures > 0 {
		result.FailedScenarios = failures
		result.ErrorRate = ratio(result.FailedScenarios, result.TotalScenarios)
	}

	printReport(stdout, result, cfg)
	if cfg.outputPath != "" {
		if err := writeJSONReport(afero.NewOsFs(), cfg.outputPath, result); err != nil {
			_, _ = fmt.Fprintf(stderr, "failed to write report: %v\n", err)
			return 1
		}
	}
	if result.FailedScenarios > 0 {
		return 1
	}
	return 0
}

func dispatchJobs(jobs chan<- int, cfg config) {
	defer close(jobs)

	if cfg.duration <= 0 {
		for i := 0; i < cfg.total; i++ {
			jobs <- i
		}
		return
	}

	timer := time.NewTimer(cfg.duration)
	defer timer.Stop()

	for i := 0; ; i++ {
		if cfg.totalSet && i >= cfg.total {
			return
		}

		select {
		case <-timer.C:
			return
		case jobs <- i:
		}
	}
}

// discoverShops читает первую страницу магазинов; без магазинов режим browse бессмыслен.
func discoverShops(client costumeshopv1.CostumeShopServiceClient, timeout time.Duration, col *collector) ([]int64, error) {
	records, err := callList(client, timeout, "GetShops", "shops",
		costumeshopv1.ListRequest{SortField: "SHOP_ID", Page: 1, Limit: discoveryLimit}, col)
	if err != nil {
		return nil, err
	}
	ids := make([]int64, 0, len(records))
	for _, rec := range records {
		if v, ok := rec.GetFields()["SHOP_ID"]; ok {
			ids = append(ids, int64(v.GetNumberValue()))
		}
	}
	if len(ids) == 0 {
		return nil, errors.New("service has no shops")
	}
	return ids, nil
}

func runScenario(
	client costumeshopv1.CostumeShopServiceClient,
	cfg config,
	index int,
	shopIDs []int64,
	col *collector,
) error {
	scenarioStart := time.Now()
	scenarioCode := codes.OK
	defer func() {
		col.record(scenarioMethod, time.Since(scenarioStart), scenarioCode)
	}()

	var err error
	switch cfg.mode {
	case modeList:
		err = listScenario(client, cfg, index, col)
	case modeBrowse:
		err = browseScenario(client, cfg, shopIDs[index%len(shopIDs)], col)
	case modeSearch:
		_, err = callList(client, cfg.timeout, "GetCostumes", "costumes", costumeshopv1.ListRequest{
			Filter:        &costumeshopv1.Filter{Field: "COSTUME_NAME", Operator: "contains", Value: cfg.search},
			SortField:     "AVAILABLE",
			SortDirection: "DESC",
			Page:          1,
			Limit:         cfg.pageSize,
		}, col)
	default:
		err = status.Errorf(codes.InvalidArgument, "unsupported mode: %s", cfg.mode)
	}
	if err != nil {
		scenarioCode = grpcCode(err)
	}
	return err
}

func listScenario(client costumeshopv1.CostumeShopServiceClient, cfg config, index int, col *collector) error {
	req := costumeshopv1.ListRequest{Page: 1, Limit: cfg.pageSize}
	var err error
	switch index % 3 {
	case 0:
		_, err = callList(client, cfg.timeout, "GetShops", "shops", req, col)
	case 1:
		_, err = callList(client, cfg.timeout, "GetCostumes", "costumes", req, col)
	default:
		_, err = callList(client, cfg.timeout, "GetOffers", "offers", req, col)
	}
	return err
}

func browseScenario(client costumeshopv1.CostumeShopServiceClient, cfg config, shopID int64, col *collector) error {
	shop, err := callShop(client, cfg.timeout, shopID, col)
	if err != nil {
		return err
	}
	if got := int64(shop.GetFields()["SHOP_ID"].GetNumberValue()); got != shopID {
		return status.Errorf(codes.Internal, "GetShop returned shop %d, want %d", got, shopID)
	}

	byShop := costumeshopv1.ListRequest{
		Filter: &costumeshopv1.Filter{Field: "SHOP_ID", Operator: "equals", Value: strconv.FormatInt(shopID, 10)},
		Page:   1,
		Limit:  cfg.pageSize,
	}
	if _, err := callList(client, cfg.timeout, "GetCostumes", "costumes", byShop, col); err != nil {
		return err
	}
	_, err = callList(client, cfg.timeout, "GetOffers", "offers", byShop, col)
	return err
}

func callList(
	client costumeshopv1.CostumeShopServiceClient,
	timeout time.Duration,
	method, key string,
	req costumeshopv1.ListRequest,
	col *collector,
) ([]*structpb.Struct, error) {
	in, err := req.Struct()
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "encode request: %v", err)
	}

	start := time.Now()
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	var out *structpb.Struct
	switch method {
	case "GetShops":
		out, err = client.GetShops(ctx, in)
	case "GetCostumes":
		out, err = client.GetCostumes(ctx, in)
	case "GetOffers":
		out, err = client.GetOffers(ctx, in)
	default:
		err = status.Errorf(codes.Unimplemented, "unknown list method %s", method)
	}
	col.record(method, time.Since(start), grpcCode(err))
	if err != nil {
		return nil, err
	}

	values := out.GetFields()[key].GetListValue().GetValues()
	records := make([]*structpb.Struct, 0, len(values))
	for _, v := range values {
		records = append(records, v.GetStructValue())
	}
	col.addRecords(len(records))
	return records, nil
}

func callShop(client costumeshopv1.CostumeShopServiceClient, timeout time.Duration, id int64, col *collector) (*structpb.Struct, error) {
	in, err := costumeshopv1.IDRequest("SHOP_ID", id)
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "encode request: %v", err)
	}

	start := time.Now()
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	out, err := client.GetShop(ctx, in)
	col.record("GetShop", time.Since(start), grpcCode(err))
	if err != nil {
		return nil, err
	}
	col.addRecords(1)
	return out, nil
}

func grpcCode(err error) codes.Code {
	if err == nil {
		return codes.OK
	}
	return status.Code(err)
}
