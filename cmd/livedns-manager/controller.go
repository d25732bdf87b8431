package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"k8s.io/apimachinery/pkg/runtime"
	utilruntime "k8s.io/apimachinery/pkg/util/runtime"
	clientgoscheme "k8s.io/client-go/kubernetes/scheme"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/healthz"
	metricsserver "sigs.k8s.io/controller-runtime/pkg/metrics/server"
	gatewayv1 "sigs.k8s.io/gateway-api/apis/v1"

	"github.com/yuriy-kovalchuk/livedns-manager/internal/config"
	"github.com/yuriy-kovalchuk/livedns-manager/internal/controller"
)

var scheme = runtime.NewScheme()

func init() {
	utilruntime.Must(clientgoscheme.AddToScheme(scheme))
	utilruntime.Must(gatewayv1.Install(scheme))
}

type controllerOptions struct {
	domainMapPath          string
	metricsBindAddress     string
	healthProbeBindAddress string
	dryRun                 bool
}

func newControllerCommand(g *globalOptions) *cobra.Command {
	var o controllerOptions

	cmd := &cobra.Command{
		Use:   "controller",
		Short: "Publish HTTPRoute hostnames as LiveDNS A records",
		Long: `Run a Kubernetes controller that watches Gateway API HTTPRoutes and keeps an
A record for every hostname matched by the domain map. Records are removed
when a hostname leaves the route or the route is deleted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runController(g, o)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&o.domainMapPath, "domain-map", "", "Path to the domain map (default $DOMAIN_MAP_PATH or "+config.DefaultDomainMapPath+")")
	flags.StringVar(&o.metricsBindAddress, "metrics-bind-address", ":9090", "Address the metrics endpoint binds to")
	flags.StringVar(&o.healthProbeBindAddress, "health-probe-bind-address", ":8081", "Address the health probe endpoint binds to")
	flags.BoolVar(&o.dryRun, "dry-run", false, "Log intended changes without writing to LiveDNS")

	return cmd
}

func runController(g *globalOptions, o controllerOptions) error {
	log := ctrl.Log.WithName("setup")

	log.Info("starting livedns-manager controller", "version", Version, "dryRun", o.dryRun)

	var (
		domainMap *config.DomainMap
		err       error
	)
	if o.domainMapPath != "" {
		domainMap, err = config.LoadDomainMapFromPath(o.domainMapPath)
	} else {
		domainMap, err = config.LoadDomainMap()
	}
	if err != nil {
		return fmt.Errorf("unable to load domain map: %w", err)
	}
	log.Info("loaded domain map", "domains", len(domainMap.Domains()))

	cfg, apiKey, err := g.credentials()
	if err != nil {
		return fmt.Errorf("unable to load provider config: %w", err)
	}
	if apiKey == "" {
		return errors.New("api_key is required")
	}

	records, err := g.newReconciler(ctrl.Log.WithName("livedns"), cfg, apiKey, o.dryRun)
	if err != nil {
		return fmt.Errorf("unable to create LiveDNS client: %w", err)
	}

	mgr, err := ctrl.NewManager(ctrl.GetConfigOrDie(), ctrl.Options{
		Scheme:                 scheme,
		Metrics:                metricsserver.Options{BindAddress: o.metricsBindAddress},
		HealthProbeBindAddress: o.healthProbeBindAddress,
	})
	if err != nil {
		return fmt.Errorf("unable to create manager: %w", err)
	}

	if err := mgr.AddHealthzCheck("healthz", healthz.Ping); err != nil {
		return fmt.Errorf("unable to set up health check: %w", err)
	}
	if err := mgr.AddReadyzCheck("readyz", healthz.Ping); err != nil {
		return fmt.Errorf("unable to set up ready check: %w", err)
	}

	reconciler := &controller.HTTPRouteReconciler{
		Client:    mgr.GetClient(),
		APIReader: mgr.GetAPIReader(),
		Log:       ctrl.Log.WithName("httproute-controller"),
		DomainMap: domainMap,
		Records:   records,
		APIKey:    apiKey,
	}
	if err := reconciler.SetupWithManager(mgr); err != nil {
		return fmt.Errorf("unable to set up HTTPRoute controller: %w", err)
	}

	log.Info("starting manager")
	if err := mgr.Start(ctrl.SetupSignalHandler()); err != nil {
		return fmt.Errorf("manager exited with error: %w", err)
	}

	return nil
}
