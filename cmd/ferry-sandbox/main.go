package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/five82/ferry/internal/config"
	"github.com/five82/ferry/internal/sandbox"
)

func main() {
	addr := flag.String("addr", ":8080", "listen address")
	dsn := flag.String("db", ":memory:", "SQLite database path for items")
	bucket := flag.String("bucket", "uploads", "bucket name reported by /api/files")
	latency := flag.Duration("latency", 0, "artificial latency to inject per request")
	fail := flag.String("fail", "", "failure injection (rate=<float>,code=<httpStatus>)")
	flag.Parse()

	opts := sandbox.Options{Bucket: *bucket, Latency: *latency}
	if err := parseFail(*fail, &opts); err != nil {
		log.Fatalf("parse fail flag: %v", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	items, err := sandbox.OpenItemStore(ctx, *dsn)
	if err != nil {
		log.Fatalf("open item store: %v", err)
	}
	defer items.Close()

	server := &http.Server{
		Addr:              *addr,
		Handler:           sandbox.New(items, opts).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	log.Printf("ferry-sandbox listening on %s", *addr)
	host := *addr
	if strings.HasPrefix(host, ":") {
		host = "localhost" + host
	}
	fmt.Println()
	fmt.Printf("export %s=http://%s/api\n", config.EnvAPIURL, host)
	fmt.Println()

	go func() {
		<-ctx.Done()
		shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
		defer done()
		_ = server.Shutdown(shutdownCtx)
	}()

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("server failed: %v", err)
	}
}

func parseFail(raw string, opts *sandbox.Options) error {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	for _, part := range strings.Split(raw, ",") {
		kv := strings.SplitN(strings.TrimSpace(part), "=", 2)
		if len(kv) != 2 {
			return fmt.Errorf("invalid fail segment %q", part)
		}
		switch strings.ToLower(kv[0]) {
		case "rate":
			rate, err := strconv.ParseFloat(kv[1], 64)
			if err != nil {
				return fmt.Errorf("parse rate: %w", err)
			}
			if rate < 0 || rate > 1 {
				return fmt.Errorf("rate must be between 0 and 1")
			}
			opts.FailRate = rate
		case "code":
			code, err := strconv.Atoi(kv[1])
			if err != nil {
				return fmt.Errorf("parse code: %w", err)
			}
			opts.FailCode = code
		default:
			return fmt.Errorf("unknown fail option %q", kv[0])
		}
	}
	return nil
}
