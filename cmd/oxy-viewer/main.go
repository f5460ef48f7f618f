package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/Carmen-Shannon/oxy-viewer/client"
	"github.com/Carmen-Shannon/oxy-viewer/engine"
	"github.com/Carmen-Shannon/oxy-viewer/engine/loader"
	"github.com/Carmen-Shannon/oxy-viewer/engine/store"
	"github.com/Carmen-Shannon/oxy-viewer/server/api"
	"github.com/Carmen-Shannon/oxy-viewer/server/hub"
	"github.com/Carmen-Shannon/oxy-viewer/server/storage"
	"github.com/Carmen-Shannon/oxy-viewer/ui"
)

func main() {
	addr := flag.String("addr", ":3001", "listen address")
	uploadsDir := flag.String("uploads-dir", "uploads", "directory for uploaded models")
	displayDir := flag.String("display-dir", "display", "directory for display models")
	origins := flag.String("origins", strings.Join(api.DefaultOrigins, ","), "comma separated list of allowed CORS origins")
	tickRate := flag.Float64("tick-rate", 60, "engine ticks per second")
	profile := flag.Bool("profile", false, "log engine performance statistics")
	registryURL := flag.String("registry-url", "", "upload service the viewer talks to (default: this server)")
	uniqueNames := flag.Bool("unique-names", false, "prefix uploaded filenames with a UUID")
	publicURL := flag.String("public-url", "", "base URL used in upload responses")
	flag.Parse()

	allowed := splitList(*origins)
	if *registryURL == "" {
		*registryURL = "http://localhost" + *addr
		if !strings.HasPrefix(*addr, ":") {
			*registryURL = "http://" + *addr
		}
	}

	// ── Storage + API ───────────────────────────────────────────────────
	files, err := storage.NewLocalStorage(*uploadsDir, *displayDir, storage.WithUniqueNames(*uniqueNames))
	if err != nil {
		log.Fatalf("Failed to prepare storage: %v", err)
	}
	apiOpts := []api.ServerBuilderOption{api.WithOrigins(allowed...)}
	if *publicURL != "" {
		apiOpts = append(apiOpts, api.WithPublicURL(*publicURL))
	}
	srv := api.NewServer(files, apiOpts...)

	// ── Viewer engine ───────────────────────────────────────────────────
	registry, err := client.NewClient(*registryURL)
	if err != nil {
		log.Fatalf("Failed to create registry client: %v", err)
	}
	src, err := loader.NewHTTPSource(*registryURL, nil)
	if err != nil {
		log.Fatalf("Failed to create model source: %v", err)
	}
	eng := engine.NewEngine(
		engine.WithStore(store.NewStore(store.WithRegistry(registry))),
		engine.WithSource(src),
		engine.WithTickRate(*tickRate),
		engine.WithProfiling(*profile),
	)

	// ── Live channel ────────────────────────────────────────────────────
	controls := ui.NewControls(eng.Store(), eng.Scene().Camera().Controller())
	live := hub.NewHub(eng, controls, hub.WithOrigins(allowed...))
	live.Start()
	eng.SetTickCallback(live.OnTick)
	srv.Handle("GET /ws", live)

	httpServer := &http.Server{
		Addr:              *addr,
		Handler:           srv,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ln, err := net.Listen("tcp", *addr)
	if err != nil {
		log.Fatalf("Failed to listen on %s: %v", *addr, err)
	}

	go eng.Run()
	go func() {
		log.Printf("Server running on http://localhost%s", *addr)
		if err := httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("Server error: %v", err)
			stop()
		}
	}()
	go primeLists(ctx, controls, 30*time.Second)

	<-ctx.Done()
	log.Println("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}
	live.Close()
	eng.Quit()
}

// primeLists fills the uploads and display lists once the server accepts connections.
func primeLists(ctx context.Context, controls ui.Controls, timeout time.Duration) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := controls.Dispatch(ctx, ui.Action{Name: ui.ActionRefreshLists}); err != nil {
		log.Printf("Failed to fetch file lists: %v", err)
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
