// Copyright 2025 The Merb Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package route

import (
	"fmt"
	"strings"

	"github.com/jinzhu/inflection"
)

// ResourceOption configures Resources and Resource.
type ResourceOption func(*resourceConfig)

type resourceAction struct {
	name   string
	method string
}

type resourceConfig struct {
	singular   string
	controller string
	path       string
	namePrefix string
	namespace  string
	keys       []string
	member     []resourceAction
	collection []resourceAction
}

// WithSingular sets the singular name used for member route names and
// nested key placeholders. The default is derived from the plural name.
func WithSingular(singular string) ResourceOption {
	return func(c *resourceConfig) { c.singular = singular }
}

// WithController sets the controller param. The default is the plural name.
func WithController(controller string) ResourceOption {
	return func(c *resourceConfig) { c.controller = controller }
}

// WithResourcePath sets the path of the resource, "/name" by default.
func WithResourcePath(path string) ResourceOption {
	return func(c *resourceConfig) {
		if path != "" && !strings.HasPrefix(path, "/") {
			path = "/" + path
		}
		c.path = path
	}
}

// WithNamePrefix prepends prefix to the names of the generated routes.
func WithNamePrefix(prefix string) ResourceOption {
	return func(c *resourceConfig) { c.namePrefix = prefix }
}

// WithResourceNamespace places the controller in a namespace without
// changing the path. Route names get the "namespace_" prefix.
func WithResourceNamespace(namespace string) ResourceOption {
	return func(c *resourceConfig) { c.namespace = namespace }
}

// WithKeys replaces the "id" placeholder with one placeholder per key.
func WithKeys(keys ...string) ResourceOption {
	return func(c *resourceConfig) { c.keys = keys }
}

// WithKey replaces the "id" placeholder with key.
func WithKey(key string) ResourceOption {
	return WithKeys(key)
}

// WithMember adds an action on a single member, routed at
// "/users/:id/action" and named "action_user".
func WithMember(action, method string) ResourceOption {
	return func(c *resourceConfig) {
		c.member = append(c.member, resourceAction{name: action, method: method})
	}
}

// WithCollection adds an action on the collection, routed at
// "/users/action" and named "action_users".
func WithCollection(action, method string) ResourceOption {
	return func(c *resourceConfig) {
		c.collection = append(c.collection, resourceAction{name: action, method: method})
	}
}

// Resource is the result of Resources or Resource: the registered routes
// and a handle for nesting further routes below a member.
type Resource struct {
	base   *Behavior
	nested *Behavior
	routes []*Route
}

// Routes returns the routes registered for the resource in order.
func (r *Resource) Routes() []*Route {
	return r.routes
}

// Nest calls fn with a Behavior below a single member of the resource:
// "/blogs/:blog_id" for Resources("blogs"). Routes named inside get the
// singular prefix, so Resources("users") nested in blogs yields "blog_user".
func (r *Resource) Nest(fn func(b *Behavior)) *Resource {
	fn(r.nested)
	return r
}

const formatSuffix = "(.:format)"

// Resources registers the conventional collection routes for name:
//
//	GET    /users(.:format)          index    users
//	GET    /users/new                new      new_user
//	POST   /users(.:format)          create
//	GET    /users/:id(.:format)      show     user
//	GET    /users/:id/edit           edit     edit_user
//	GET    /users/:id/delete         delete   delete_user
//	PUT    /users/:id(.:format)      update
//	DELETE /users/:id(.:format)      destroy
//
// Collection actions are registered before create and member actions
// after delete so that literal paths take precedence over ":id".
func (b *Behavior) Resources(name string, opts ...ResourceOption) *Resource {
	if name == "" {
		b.fail(configErr("", "", fmt.Errorf("%w: resources", ErrEmptyName)))
	}
	cfg := resourceConfig{
		singular:   inflection.Singular(name),
		controller: name,
		path:       "/" + name,
		keys:       []string{"id"},
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	base := cfg.scope(b)
	res := &Resource{base: base}
	coll := base.Match(cfg.path).With(Params{"controller": cfg.controller})

	indexName := name
	if indexName == cfg.singular {
		indexName += "_index"
	}
	res.add(coll.Match(formatSuffix, Conditions{KeyMethod: "get"}).To(Params{"action": "index"}).Name(indexName))
	res.add(coll.Match("/new", Conditions{KeyMethod: "get"}).To(Params{"action": "new"}).Name("new_" + cfg.singular))
	for _, a := range cfg.collection {
		res.add(coll.Match("/"+a.name+formatSuffix, Conditions{KeyMethod: a.method}).
			To(Params{"action": a.name}).Name(a.name + "_" + name))
	}
	res.add(coll.Match(formatSuffix, Conditions{KeyMethod: "post"}).To(Params{"action": "create"}))

	member := coll.Match(cfg.identPath(""))
	res.member(member, cfg, cfg.singular)

	nestPath := cfg.path + cfg.identPath(cfg.singular+"_")
	res.nested = base.Match(nestPath).NameScope(cfg.singular + "_")
	return res
}

// Resource registers the conventional routes for a singular resource:
//
//	GET    /profile(.:format)     show     profile
//	GET    /profile/new           new      new_profile
//	POST   /profile(.:format)     create
//	GET    /profile/edit          edit     edit_profile
//	GET    /profile/delete        delete   delete_profile
//	PUT    /profile(.:format)     update
//	DELETE /profile(.:format)     destroy
func (b *Behavior) Resource(name string, opts ...ResourceOption) *Resource {
	if name == "" {
		b.fail(configErr("", "", fmt.Errorf("%w: resource", ErrEmptyName)))
	}
	cfg := resourceConfig{
		singular:   name,
		controller: inflection.Plural(name),
		path:       "/" + name,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	cfg.member = append(cfg.member, cfg.collection...)

	base := cfg.scope(b)
	res := &Resource{base: base}
	coll := base.Match(cfg.path).With(Params{"controller": cfg.controller})

	res.add(coll.Match("/new", Conditions{KeyMethod: "get"}).To(Params{"action": "new"}).Name("new_" + cfg.singular))
	res.add(coll.Match(formatSuffix, Conditions{KeyMethod: "post"}).To(Params{"action": "create"}))
	res.member(coll, cfg, cfg.singular)

	res.nested = base.Match(cfg.path).NameScope(cfg.singular + "_")
	return res
}

// member registers show, edit, delete, custom member actions, update and destroy.
func (r *Resource) member(member *Behavior, cfg resourceConfig, singular string) {
	r.add(member.Match(formatSuffix, Conditions{KeyMethod: "get"}).To(Params{"action": "show"}).Name(singular))
	r.add(member.Match("/edit", Conditions{KeyMethod: "get"}).To(Params{"action": "edit"}).Name("edit_" + singular))
	r.add(member.Match("/delete", Conditions{KeyMethod: "get"}).To(Params{"action": "delete"}).Name("delete_" + singular))
	for _, a := range cfg.member {
		r.add(member.Match("/"+a.name+formatSuffix, Conditions{KeyMethod: a.method}).
			To(Params{"action": a.name}).Name(a.name + "_" + singular))
	}
	r.add(member.Match(formatSuffix, Conditions{KeyMethod: "put"}).To(Params{"action": "update"}))
	r.add(member.Match(formatSuffix, Conditions{KeyMethod: "delete"}).To(Params{"action": "destroy"}))
}

func (r *Resource) add(route *Route) {
	r.routes = append(r.routes, route)
}

// scope applies the namespace and name prefix options to b.
func (c resourceConfig) scope(b *Behavior) *Behavior {
	if c.namespace != "" {
		b = b.Namespace(c.namespace, WithNamespacePath(""))
	}
	if c.namePrefix != "" {
		b = b.NameScope(c.namePrefix)
	}
	return b
}

// identPath returns "/:id" style placeholders for the resource keys.
func (c resourceConfig) identPath(prefix string) string {
	var b strings.Builder
	for _, k := range c.keys {
		b.WriteString("/:")
		b.WriteString(prefix)
		b.WriteString(k)
	}
	return b.String()
}
