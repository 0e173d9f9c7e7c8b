// Command argoindex searches the profile index of an Argo GDAC.
//
// Usage:
//
//	argoindex [flags] wmo 6902746 1901393
//	argoindex [flags] cyc 1 2 3
//	argoindex [flags] wmocyc 6902746,1901393 1 2
//	argoindex [flags] box -- lon_min lon_max lat_min lat_max [date_min date_max]
//	argoindex [flags] info
//	argoindex [flags] clear-cache
//
// Settings come from flags, ARGOINDEX_* variables (a .env file in the working
// directory is loaded first) and an optional argoindex.yaml. Use "--" before
// arguments that start with a minus sign.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/euroargodev/argoindex"
	"github.com/euroargodev/argoindex/config"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	os.Exit(run(ctx, os.Args[1:], os.Stdout, os.Stderr))
}

// output modes
const (
	outURI   = "uri"
	outFrame = "frame"
	outWMO   = "wmo"
	outFetch = "fetch"
)

func newFlags() *pflag.FlagSet {
	fs := pflag.NewFlagSet("argoindex", pflag.ContinueOnError)
	fs.String("config", "", "configuration file")
	fs.String("gdac", "", "GDAC host: local path, http(s):// or ftp:// URL")
	fs.String("dataset", "phy", "dataset: phy or bgc")
	fs.String("index_file", "", "index file name, overrides the dataset default")
	fs.String("backend", "typed", "index backend: typed or labeled")
	fs.Bool("cache", false, "cache searches and exports")
	fs.String("cachedir", "", "cache directory")
	fs.Duration("api_timeout", 0, "remote request timeout")
	fs.String("artifacts.store", "local", "artifact store: local, memory, redis, s3 or minio")
	fs.String("artifacts.codec", "binary+zstd", "artifact codec: binary, binary+lz4 or binary+zstd")
	fs.String("log.level", "info", "log level")
	fs.String("log.format", "console", "log format: console or json")
	fs.Int("max-rows", -1, "keep the first matches only")
	fs.StringP("output", "o", outURI, "output: uri, frame, wmo or fetch")
	return fs
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(stderr, "argoindex: .env: %v\n", err)
		return 2
	}

	fs := newFlags()
	fs.SetOutput(stderr)
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		return 2
	}
	path, _ := fs.GetString("config")
	cfg, err := config.Load(path, fs)
	if err != nil {
		fmt.Fprintf(stderr, "argoindex: %v\n", err)
		return 2
	}

	level, _ := cfg.LogLevel()
	logger, zl := argoindex.NewZapLogger(level, cfg.Log.Format, stderr)
	defer func() { _ = zl.Sync() }()

	if err := execute(ctx, cfg, fs, logger, stdout); err != nil {
		zl.Error("argoindex failed", zap.Error(err))
		if errors.Is(err, argoindex.ErrInvalidArgument) {
			return 2
		}
		return 1
	}
	return 0
}

func storeOptions(ctx context.Context, cfg *config.Config, logger *argoindex.Logger) ([]argoindex.Option, io.Closer, error) {
	ds, err := argoindex.ParseDataset(cfg.Dataset)
	if err != nil {
		return nil, nil, err
	}
	backend, err := argoindex.ParseBackend(cfg.Backend)
	if err != nil {
		return nil, nil, err
	}
	opts := []argoindex.Option{
		argoindex.WithDataset(ds),
		argoindex.WithBackend(backend),
		argoindex.WithTimeout(cfg.APITimeout),
		argoindex.WithRateLimit(cfg.Limits.MaxRequests, cfg.Limits.BytesPerSec),
		argoindex.WithIndexCacheSize(cfg.Limits.MemCacheBytes, cfg.Limits.DiskCacheBytes),
		argoindex.WithLogger(logger),
	}
	if cfg.IndexFile != "" {
		opts = append(opts, argoindex.WithIndexFile(cfg.IndexFile))
	}
	if !cfg.Cache {
		return opts, nopCloser{}, nil
	}

	cd, err := cfg.ArtifactCodec()
	if err != nil {
		return nil, nil, err
	}
	artifacts, closer, err := openArtifacts(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	opts = append(opts,
		argoindex.WithCache(true),
		argoindex.WithCodec(cd),
		argoindex.WithCacheDir(cfg.CacheDir),
		argoindex.WithArtifactStore(artifacts))
	return opts, closer, nil
}

func execute(ctx context.Context, cfg *config.Config, fs *pflag.FlagSet, logger *argoindex.Logger, stdout io.Writer) error {
	args := fs.Args()
	if len(args) == 0 {
		return fmt.Errorf("%w: missing command", argoindex.ErrInvalidArgument)
	}

	opts, closer, err := storeOptions(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closer.Close()

	s, err := argoindex.New(ctx, cfg.GDAC, opts...)
	if err != nil {
		return err
	}
	defer s.Close()

	maxRows, _ := fs.GetInt("max-rows")
	output, _ := fs.GetString("output")
	call := []argoindex.CallOption{argoindex.MaxRows(maxRows)}
	cmd, rest := args[0], args[1:]
	ds, _ := argoindex.ParseDataset(cfg.Dataset)

	switch cmd {
	case "info":
		if err := s.Load(ctx); err != nil {
			return err
		}
		fmt.Fprintln(stdout, s.String())
		return nil
	case "clear-cache":
		return s.ClearCache(ctx)
	case "wmo":
		wmos, err := parseInts(rest)
		if err != nil {
			return err
		}
		if output == outFetch {
			res, err := argoindex.ResolveWMO(ctx, s, ds, wmos, nil)
			return printResolution(stdout, res, err)
		}
		err = s.SearchWMO(ctx, wmos, call...)
		if err != nil {
			return err
		}
	case "cyc":
		cycles, err := parseInts(rest)
		if err != nil {
			return err
		}
		if err := s.SearchCyc(ctx, cycles, call...); err != nil {
			return err
		}
	case "wmocyc":
		if len(rest) < 2 {
			return fmt.Errorf("%w: wmocyc needs floats and cycles", argoindex.ErrInvalidArgument)
		}
		wmos, err := parseInts(rest[:1])
		if err != nil {
			return err
		}
		cycles, err := parseInts(rest[1:])
		if err != nil {
			return err
		}
		if output == outFetch {
			res, err := argoindex.ResolveWMO(ctx, s, ds, wmos, cycles)
			return printResolution(stdout, res, err)
		}
		if err := s.SearchWMOCyc(ctx, wmos, cycles, call...); err != nil {
			return err
		}
	case "box":
		box, err := argoindex.ParseBox(rest)
		if err != nil {
			return err
		}
		if output == outFetch {
			res, err := argoindex.ResolveBox(ctx, s, ds, box)
			return printResolution(stdout, res, err)
		}
		if box.HasTime {
			err = s.SearchLatLonTim(ctx, box, call...)
		} else {
			err = s.SearchLatLon(ctx, box, call...)
		}
		if err != nil {
			return err
		}
	default:
		return fmt.Errorf("%w: unknown command %q", argoindex.ErrInvalidArgument, cmd)
	}
	return printResult(ctx, stdout, s, output, call)
}

func printResult(ctx context.Context, w io.Writer, s argoindex.Store, output string, call []argoindex.CallOption) error {
	switch output {
	case outURI:
		uris, err := s.URI()
		if err != nil {
			return err
		}
		for _, u := range uris {
			fmt.Fprintln(w, u)
		}
	case outWMO:
		wmos, err := s.ReadWMO()
		if err != nil {
			return err
		}
		for _, wmo := range wmos {
			fmt.Fprintln(w, wmo)
		}
	case outFrame:
		f, err := s.ToDataFrame(ctx, call...)
		if err != nil {
			return err
		}
		fmt.Fprintln(w, strings.Join(f.Columns, ","))
		for _, p := range f.Profiles {
			fmt.Fprintln(w, strings.Join(profileCells(p, f.Columns), ","))
		}
	default:
		return fmt.Errorf("%w: unknown output %q", argoindex.ErrInvalidArgument, output)
	}
	return nil
}

func printResolution(w io.Writer, res argoindex.Resolution, err error) error {
	if err != nil {
		return err
	}
	for _, u := range res.URIs {
		fmt.Fprintln(w, u)
	}
	if res.PostFilter {
		fmt.Fprintln(w, "# multi-profile files: filter the loaded profiles again")
	}
	return nil
}

func profileCells(p argoindex.Profile, columns []string) []string {
	out := make([]string, len(columns))
	for i, c := range columns {
		switch c {
		case "file":
			out[i] = p.File
		case "date":
			out[i] = formatTime(p.Date)
		case "latitude":
			out[i] = strconv.FormatFloat(p.Latitude, 'f', -1, 64)
		case "longitude":
			out[i] = strconv.FormatFloat(p.Longitude, 'f', -1, 64)
		case "ocean":
			out[i] = p.Ocean
		case argoindex.ColProfilerCode:
			out[i] = p.ProfilerCode
		case argoindex.ColInstitutionCode:
			out[i] = p.InstitutionCode
		case "parameters":
			out[i] = p.Parameters
		case "parameter_data_mode":
			out[i] = p.ParameterDataMode
		case "date_update":
			out[i] = formatTime(p.DateUpdate)
		case argoindex.ColWMO:
			out[i] = strconv.Itoa(p.WMO)
		case argoindex.ColInstitution:
			out[i] = p.Institution
		case argoindex.ColProfiler:
			out[i] = p.Profiler
		}
	}
	return out
}
