package controller

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/go-logr/logr"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/controller/controllerutil"
	"sigs.k8s.io/controller-runtime/pkg/event"
	"sigs.k8s.io/controller-runtime/pkg/predicate"
	gatewayv1 "sigs.k8s.io/gateway-api/apis/v1"

	"k8s.io/client-go/util/retry"

	"github.com/yuriy-kovalchuk/livedns-manager/internal/config"
	"github.com/yuriy-kovalchuk/livedns-manager/internal/livedns"
)

const (
	finalizerName              = "livedns.manager/cleanup"
	managedHostnamesAnnotation = "livedns.manager/managed-hostnames"
)

// RecordReconciler converges a single record set. *livedns.Reconciler
// implements it.
type RecordReconciler interface {
	Apply(ctx context.Context, p livedns.Params) (*livedns.Result, error)
}

var _ RecordReconciler = (*livedns.Reconciler)(nil)

// HTTPRouteReconciler publishes an A record for every HTTPRoute hostname
// that matches the domain map, and removes it again when the hostname goes
// away.
type HTTPRouteReconciler struct {
	client.Client
	// APIReader bypasses the cache for read-modify-write cycles. Client is
	// used when it is nil.
	APIReader client.Reader
	Log       logr.Logger
	DomainMap *config.DomainMap
	Records   RecordReconciler
	APIKey    string
}

func (r *HTTPRouteReconciler) Reconcile(ctx context.Context, req ctrl.Request) (ctrl.Result, error) {
	var route gatewayv1.HTTPRoute
	if err := r.reader().Get(ctx, req.NamespacedName, &route); err != nil {
		return ctrl.Result{}, client.IgnoreNotFound(err)
	}

	// Handle deletion
	if !route.DeletionTimestamp.IsZero() {
		if controllerutil.ContainsFinalizer(&route, finalizerName) {
			r.Log.Info("deleting DNS records for HTTPRoute", "name", req.NamespacedName)
			for _, hostname := range routeHostnames(&route) {
				if err := r.removeHostname(ctx, hostname); err != nil {
					return ctrl.Result{}, err
				}
			}

			err := retry.RetryOnConflict(retry.DefaultRetry, func() error {
				if err := r.reader().Get(ctx, req.NamespacedName, &route); err != nil {
					return err
				}
				controllerutil.RemoveFinalizer(&route, finalizerName)
				return r.Update(ctx, &route)
			})
			if err != nil {
				return ctrl.Result{}, fmt.Errorf("failed to remove finalizer: %w", err)
			}
		}
		return ctrl.Result{}, nil
	}

	if !controllerutil.ContainsFinalizer(&route, finalizerName) {
		err := retry.RetryOnConflict(retry.DefaultRetry, func() error {
			if err := r.reader().Get(ctx, req.NamespacedName, &route); err != nil {
				return err
			}
			controllerutil.AddFinalizer(&route, finalizerName)
			return r.Update(ctx, &route)
		})
		if err != nil {
			return ctrl.Result{}, fmt.Errorf("failed to add finalizer: %w", err)
		}
		return ctrl.Result{}, nil
	}

	managedHostnames := parseManagedHostnames(route.Annotations[managedHostnamesAnnotation])
	currentHostnames := routeHostnames(&route)

	// Remove records for hostnames dropped from the spec
	for _, oldHost := range managedHostnames {
		if !Contains(currentHostnames, oldHost) {
			r.Log.Info("hostname removed from HTTPRoute, deleting DNS record", "hostname", oldHost)
			if err := r.removeHostname(ctx, oldHost); err != nil {
				return ctrl.Result{}, err
			}
		}
	}

	for _, hostname := range currentHostnames {
		target, record, ok := r.DomainMap.LookupTarget(hostname)
		if !ok {
			r.Log.V(1).Info("no domain mapping found for hostname", "hostname", hostname)
			continue
		}

		r.Log.V(1).Info("resolved hostname", "hostname", hostname, "record", record, "values", target.Values)
		res, err := r.Records.Apply(ctx, livedns.Params{
			APIKey: r.APIKey,
			Record: record,
			State:  livedns.StatePresent,
			Type:   livedns.TypeA,
			TTL:    target.TTL,
			Values: target.Values,
			Zone:   target.Zone,
			Domain: target.Domain,
		})
		if err != nil {
			recordReconcileErrors.Inc()
			return ctrl.Result{}, fmt.Errorf("reconciling DNS record for %s: %w", hostname, err)
		}
		observeResult(res)
	}

	// Update annotation with the current list of managed hostnames
	if !reflect.DeepEqual(managedHostnames, currentHostnames) {
		err := retry.RetryOnConflict(retry.DefaultRetry, func() error {
			if err := r.reader().Get(ctx, req.NamespacedName, &route); err != nil {
				return err
			}
			if route.Annotations == nil {
				route.Annotations = make(map[string]string)
			}
			data, _ := json.Marshal(currentHostnames)
			route.Annotations[managedHostnamesAnnotation] = string(data)
			return r.Update(ctx, &route)
		})
		if err != nil {
			return ctrl.Result{}, fmt.Errorf("failed to update managed-hostnames annotation: %w", err)
		}
	}

	return ctrl.Result{}, nil
}

// removeHostname sets the A record for hostname absent. Hostnames the domain
// map no longer covers are skipped, since their zone cannot be derived.
func (r *HTTPRouteReconciler) removeHostname(ctx context.Context, hostname string) error {
	target, record, ok := r.DomainMap.LookupTarget(hostname)
	if !ok {
		r.Log.Info("no domain mapping for removed hostname, leaving record in place", "hostname", hostname)
		return nil
	}

	res, err := r.Records.Apply(ctx, livedns.Params{
		APIKey: r.APIKey,
		Record: record,
		State:  livedns.StateAbsent,
		Type:   livedns.TypeA,
		Zone:   target.Zone,
		Domain: target.Domain,
	})
	if err != nil {
		recordReconcileErrors.Inc()
		return fmt.Errorf("deleting DNS record for %s: %w", hostname, err)
	}
	observeResult(res)
	return nil
}

func (r *HTTPRouteReconciler) reader() client.Reader {
	if r.APIReader != nil {
		return r.APIReader
	}
	return r.Client
}

func (r *HTTPRouteReconciler) SetupWithManager(mgr ctrl.Manager) error {
	return ctrl.NewControllerManagedBy(mgr).
		For(&gatewayv1.HTTPRoute{}).
		WithEventFilter(predicate.Funcs{
			UpdateFunc: func(e event.UpdateEvent) bool {
				// Reconcile if the Spec (Generation) has changed.
				if e.ObjectOld.GetGeneration() != e.ObjectNew.GetGeneration() {
					return true
				}
				// Also reconcile if finalizers have changed (e.g. our finalizer was added).
				if len(e.ObjectOld.GetFinalizers()) != len(e.ObjectNew.GetFinalizers()) {
					return true
				}
				// Ignore status-only updates.
				return false
			},
		}).
		Complete(r)
}
