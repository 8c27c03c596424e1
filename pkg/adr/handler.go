package adr

import (
	"github.com/pkg/errors"

	"github.com/rebuy-de/adrkit/pkg/digutil"
	"github.com/rebuy-de/adrkit/pkg/httpmsg"
	"github.com/rebuy-de/adrkit/pkg/router"
)

// KeyActionHandler names the default action handler strategy.
const KeyActionHandler digutil.Key = "adr.action-handler"

// ActionHandler invokes the target of a dispatched route.
type ActionHandler struct {
	resolver *digutil.Resolver
}

func NewActionHandler(r *digutil.Resolver) *ActionHandler {
	return &ActionHandler{resolver: r}
}

// Handle runs the route target. A digutil.Key target gets resolved into an
// Action with the request and response as overrides.
func (h *ActionHandler) Handle(req *httpmsg.Request, resp *httpmsg.Response, route *router.Route) (*httpmsg.Response, error) {
	action, err := h.action(req, resp, route)
	if err != nil {
		return nil, err
	}

	return action.Handle(req, resp)
}

func (h *ActionHandler) action(req *httpmsg.Request, resp *httpmsg.Response, route *router.Route) (Action, error) {
	switch target := route.Target.(type) {
	case Action:
		return target, nil
	case func(*httpmsg.Request, *httpmsg.Response) (*httpmsg.Response, error):
		return ActionFunc(target), nil
	case digutil.Key:
		if h.resolver == nil {
			return nil, errors.Errorf("route %s %s: cannot resolve action %q without resolver",
				route.Method, route.Pattern, string(target))
		}
		action, err := digutil.Make[Action](h.resolver, target, req, resp)
		return action, errors.Wrapf(err, "route %s %s: resolve action", route.Method, route.Pattern)
	default:
		return nil, errors.Errorf("route %s %s: unsupported target type %T",
			route.Method, route.Pattern, route.Target)
	}
}
