// Package dom implements the host-side document tree that guest modules
// manipulate through the browser bindings.
//
// There is no real browser behind the bindings: the host owns the tree.
// Documents are parsed from and serialized to HTML via golang.org/x/net/html,
// so a runner can seed the page with -html and print the final markup after
// the guest finishes.
//
// Element is a thin wrapper over *html.Node. Nodes have at most one parent;
// AppendChild detaches the child from its previous parent first and rejects
// appends that would create a cycle.
package dom
