package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"github.com/streamingfast/cli/sflags"
	"github.com/xrpl-commons/dapp-wallet/accountsync"
	"github.com/xrpl-commons/dapp-wallet/catalog"
	"github.com/xrpl-commons/dapp-wallet/dispatcher"
	"github.com/xrpl-commons/dapp-wallet/metrics"
	"github.com/xrpl-commons/dapp-wallet/rpc"
	"github.com/xrpl-commons/dapp-wallet/server"
	"github.com/xrpl-commons/dapp-wallet/session"
	"github.com/xrpl-commons/dapp-wallet/types"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func NewServeCmd(logger *zap.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve dApp requests with the wallet of the keystore",
		Long: `Connects to a rippled WebSocket endpoint, unlocks the wallet held by the
keystore and serves dApps on a local WebSocket (/ws). The synchronized account
state, the NFTs of the account and their sell offers are served over HTTP,
along with /healthz and /metrics.

When the keystore holds no wallet the server still starts: dApp requests that
need a wallet are rejected with WalletUnavailable.

Example:
  dappwallet serve \
    --network Testnet \
    --keystore-path ~/.dappwallet/keystore.json \
    --catalog-file ./catalog.yaml
`,
		RunE: serveRunE(logger),
	}

	cmd.Flags().String("ledger-endpoint", "", "rippled WebSocket endpoint (defaults to the public endpoint of --network)")
	cmd.Flags().String("network", string(types.Testnet), "Ledger network: Mainnet, Testnet, Devnet, AMM-Devnet or Custom")
	cmd.Flags().String("listen-addr", server.DefaultConfig().ListenAddr, "Address of the dApp and account HTTP server")
	cmd.Flags().String("keystore-path", "", "Path of the encrypted keystore holding the wallet recovery phrase")
	cmd.Flags().String("keystore-password", "", "Password of the keystore, preferably given through the environment")
	cmd.Flags().Duration("request-timeout", rpc.DefaultOptions().RequestTimeout, "Timeout of a single ledger request")
	cmd.Flags().Duration("submit-timeout", dispatcher.DefaultConfig().SubmitTimeout, "Maximum time to submit a transaction and wait for its validation")
	cmd.Flags().Duration("validation-poll-interval", time.Second, "Interval between validation checks of a submitted transaction")
	cmd.Flags().Int("ledger-offset", int(dispatcher.DefaultConfig().LedgerOffset), "Ledgers added to the current ledger to get LastLedgerSequence")
	cmd.Flags().Uint64("max-fee-drops", dispatcher.DefaultConfig().MaxFeeDrops, "Maximum autofilled fee in drops")
	cmd.Flags().Int("max-requests-per-second", int(rpc.DefaultOptions().MaxRequestsPerSec), "Maximum ledger requests per second (0 = unlimited)")
	cmd.Flags().Int("max-in-flight", server.DefaultConfig().MaxInFlight, "Maximum pending requests of one dApp socket")
	cmd.Flags().Duration("fetch-timeout", accountsync.DefaultConfig().FetchTimeout, "Timeout of one account synchronization fetch")
	cmd.Flags().String("catalog-file", "", "YAML file listing the catalog offers")
	cmd.Flags().String("notion-database-id", "", "Notion database listing the catalog offers (token from DAPPWALLET_NOTION_TOKEN)")

	return cmd
}

func serveRunE(logger *zap.Logger) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		network, err := types.ParseNetwork(sflags.MustGetString(cmd, "network"))
		if err != nil {
			return err
		}
		endpoint := sflags.MustGetString(cmd, "ledger-endpoint")
		if endpoint == "" {
			endpoint = network.DefaultEndpoint()
		}
		if endpoint == "" {
			return fmt.Errorf("--ledger-endpoint is required for the %s network", network)
		}

		requestTimeout := sflags.MustGetDuration(cmd, "request-timeout")
		pollInterval := sflags.MustGetDuration(cmd, "validation-poll-interval")
		maxRequestsPerSec := sflags.MustGetInt(cmd, "max-requests-per-second")

		dispatcherCfg := dispatcher.DefaultConfig()
		dispatcherCfg.Endpoint = endpoint
		dispatcherCfg.SubmitTimeout = sflags.MustGetDuration(cmd, "submit-timeout")
		dispatcherCfg.LedgerOffset = uint32(sflags.MustGetInt(cmd, "ledger-offset"))
		dispatcherCfg.MaxFeeDrops = sflags.MustGetUint64(cmd, "max-fee-drops")

		serverCfg := server.DefaultConfig()
		serverCfg.ListenAddr = sflags.MustGetString(cmd, "listen-addr")
		serverCfg.MaxInFlight = sflags.MustGetInt(cmd, "max-in-flight")

		syncCfg := accountsync.DefaultConfig()
		syncCfg.FetchTimeout = sflags.MustGetDuration(cmd, "fetch-timeout")

		logger.Info(
			"launching dApp wallet host",
			zap.String("network", string(network)),
			zap.String("ledger_endpoint", endpoint),
			zap.String("listen_addr", serverCfg.ListenAddr),
			zap.Duration("request_timeout", requestTimeout),
			zap.Duration("submit_timeout", dispatcherCfg.SubmitTimeout),
			zap.Duration("validation_poll_interval", pollInterval),
			zap.Uint32("ledger_offset", dispatcherCfg.LedgerOffset),
			zap.Uint64("max_fee_drops", dispatcherCfg.MaxFeeDrops),
			zap.Int("max_requests_per_second", maxRequestsPerSec),
		)

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		sess := session.New(network, logger.Named("session"))
		if err := unlock(sess, sflags.MustGetString(cmd, "keystore-path"), sflags.MustGetString(cmd, "keystore-password"), logger); err != nil {
			return err
		}

		cat, err := newCatalog(cmd, logger)
		if err != nil {
			return err
		}

		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		m := metrics.New(reg)

		conn := rpc.NewWSConn(endpoint, logger.Named("ledger"),
			rpc.WithRequestTimeout(requestTimeout),
			rpc.WithRateLimit(float64(maxRequestsPerSec)),
		)
		defer conn.Close()
		if err := connect(ctx, conn, logger); err != nil {
			return err
		}

		client := rpc.NewClient(conn, logger.Named("rpc"))
		waiter := rpc.NewWaiter(client, pollInterval, logger.Named("waiter"))
		dispatch := dispatcher.New(sess, client, waiter, dispatcherCfg, m, logger.Named("dispatcher"))
		synchronizer := accountsync.New(client, conn, sess, syncCfg, m, logger.Named("accountsync"))
		srv := server.New(serverCfg, dispatch, synchronizer, cat, conn, reg, logger.Named("server"))

		group, groupCtx := errgroup.WithContext(ctx)
		group.Go(func() error {
			if err := synchronizer.Run(groupCtx); err != nil && !errors.Is(err, context.Canceled) {
				return fmt.Errorf("account synchronizer: %w", err)
			}
			return nil
		})
		group.Go(func() error {
			return srv.Run(groupCtx)
		})

		if err := group.Wait(); err != nil {
			return err
		}
		logger.Info("dApp wallet host stopped")
		return nil
	}
}

// unlock loads the wallet of the keystore into the session. A missing
// keystore leaves the session locked.
func unlock(sess *session.Session, keystorePath, password string, logger *zap.Logger) error {
	if keystorePath == "" {
		logger.Warn("no keystore configured, serving without a wallet")
		return nil
	}

	err := sess.Unlock(session.NewFileStore(keystorePath, password))
	switch {
	case errors.Is(err, session.ErrNoWallet):
		logger.Warn("keystore holds no wallet, serving without a wallet", zap.String("keystore_path", keystorePath))
		return nil
	case err != nil:
		return fmt.Errorf("unlocking keystore %s: %w", keystorePath, err)
	}

	logger.Info("wallet unlocked", zap.String("address", sess.Address()))
	return nil
}

// connect retries the first connection. Later drops are handled by the
// connection itself.
func connect(ctx context.Context, conn rpc.Conn, logger *zap.Logger) error {
	return retry.Do(
		func() error { return conn.Connect(ctx) },
		retry.Context(ctx),
		retry.Attempts(5),
		retry.Delay(time.Second),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			logger.Warn("cannot reach ledger, retrying", zap.Uint("attempt", n+1), zap.Error(err))
		}),
	)
}

func newCatalog(cmd *cobra.Command, logger *zap.Logger) (catalog.Catalog, error) {
	catalogFile := sflags.MustGetString(cmd, "catalog-file")
	databaseID := sflags.MustGetString(cmd, "notion-database-id")

	switch {
	case catalogFile != "" && databaseID != "":
		return nil, fmt.Errorf("--catalog-file and --notion-database-id are mutually exclusive")
	case catalogFile != "":
		return catalog.LoadFileCatalog(catalogFile)
	case databaseID != "":
		cfg := catalog.DefaultNotionConfig()
		cfg.DatabaseID = databaseID
		cfg.Token = os.Getenv("DAPPWALLET_NOTION_TOKEN")
		return catalog.NewNotionCatalog(cfg, logger.Named("catalog"))
	}
	return nil, nil
}
