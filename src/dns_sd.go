package fusex

/*------------------------------------------------------------------
 *
 * Purpose:   	Announce the message feed over TCP using DNS-SD
 *
 * Description:
 *
 *     Most people have typed in enough IP addresses and ports by now, and
 *     would rather just select a receiver that is automatically
 *     discovered on the local network.
 *
 *     This uses the pure-Go github.com/brutella/dnssd package for
 *     mDNS/DNS-SD service announcement without requiring
 *     any system daemon or C library dependencies.
 */

import (
	"context"
	"errors"
	"os"
	"strings"

	"github.com/brutella/dnssd"
	"github.com/charmbracelet/log"
)

const DNS_SD_SERVICE = "_fusex._tcp"

/* Get a default service name to publish. By default,
 * "SDR fusex on <hostname>", or just "SDR fusex" if hostname cannot
 * be obtained.
 */
func dnsSDDefaultServiceName() string {
	var hostname, hostnameErr = os.Hostname()
	if hostnameErr != nil {
		return "SDR fusex"
	}

	// on some systems, an FQDN is returned; remove domain part
	hostname, _, _ = strings.Cut(hostname, ".")

	return "SDR fusex on " + hostname
}

// dnsSDAnnounce responds to queries until ctx is cancelled.  Failure is logged, never fatal.
func dnsSDAnnounce(ctx context.Context, name string, port int, logger *log.Logger) {
	if name == "" {
		name = dnsSDDefaultServiceName()
	}

	var cfg = dnssd.Config{ //nolint:exhaustruct
		Name: name,
		Type: DNS_SD_SERVICE,
		Port: port,
	}

	var sv, svErr = dnssd.NewService(cfg)
	if svErr != nil {
		logger.Error("DNS-SD: Failed to create service", "err", svErr)
		return
	}

	var rp, rpErr = dnssd.NewResponder()
	if rpErr != nil {
		logger.Error("DNS-SD: Failed to create responder", "err", rpErr)
		return
	}

	var _, addErr = rp.Add(sv)
	if addErr != nil {
		logger.Error("DNS-SD: Failed to add service", "err", addErr)
		return
	}

	logger.Info("DNS-SD: Announcing messages over TCP", "port", port, "name", name)

	go func() {
		var respondErr = rp.Respond(ctx)
		if respondErr != nil && !errors.Is(respondErr, context.Canceled) {
			logger.Error("DNS-SD: Responder error", "err", respondErr)
		}
	}()
}
