package profiling

import (
	"net"
	"net/http"

	// Registers the /debug/pprof handlers on http.DefaultServeMux.
	_ "net/http/pprof"

	"github.com/dynastynet/finalityd/infrastructure/logger"
	"github.com/dynastynet/finalityd/util/panics"
)

// Start serves pprof on the given port in the background. Requests to any
// other path are redirected to /debug/pprof.
func Start(port string, log *logger.Logger) {
	spawn := panics.GoroutineWrapperFunc(log)
	spawn(func() {
		listenAddr := net.JoinHostPort("", port)
		log.Infof("Profile server listening on %s", listenAddr)
		http.Handle("/", http.RedirectHandler("/debug/pprof", http.StatusSeeOther))
		log.Errorf("Profile server stopped: %s", http.ListenAndServe(listenAddr, nil))
	})
}
