// Package adr implements the Action-Domain-Responder pattern on top of the
// router and the resolver.
//
// A route target is either an Action, a plain function with the signature of
// ActionFunc, a Triad or a digutil.Key that names a strategy returning an
// Action:
//
//	r.Get("/items/{id}", adr.ActionFunc(func(req *httpmsg.Request, resp *httpmsg.Response) (*httpmsg.Response, error) {
//	    id, _ := req.Attribute("id")
//	    return resp.WriteString(fmt.Sprintf("item %v", id)), nil
//	}))
//
//	r.Post("/items", adr.Triad{Domain: adr.DomainFunc(createItem)})
package adr
