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

//go:build integration

package router_test

import (
	"net/http"
	"net/http/httptest"
	"strconv"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"merb.dev/core/router"
	"merb.dev/core/router/route"
)

type post struct {
	id   int
	blog int
}

func (p post) ToParam() string { return strconv.Itoa(p.id) }

func (p post) SegmentValue(name string) (any, bool) {
	if name == "blog_id" {
		return p.blog, true
	}
	return nil, false
}

var _ = Describe("Resource routing", func() {
	var r *router.Router

	BeforeEach(func() {
		r = router.MustNew()
		Expect(r.Prepare(func(b *route.Behavior) {
			b.Match("/").To(route.Params{"controller": "home"}).Name("root")
			b.Resources("blogs", route.WithMember("publish", "post")).Nest(func(blog *route.Behavior) {
				blog.Resources("posts", route.WithCollection("drafts", "get"))
			})
			b.Resource("account")
			b.Namespace("admin").Scope(func(admin *route.Behavior) {
				admin.Resources("users")
			})
			b.DefaultRoutes(nil)
		})).To(Succeed())
	})

	match := func(method, target string) router.Match {
		m, err := r.Match(router.FromHTTP(httptest.NewRequest(method, target, nil)))
		Expect(err).NotTo(HaveOccurred())
		return m
	}

	Describe("plural resources", func() {
		It("routes the collection", func() {
			m := match(http.MethodGet, "/blogs")
			Expect(m.Name()).To(Equal("blogs"))
			Expect(m.Params).To(HaveKeyWithValue("action", "index"))

			m = match(http.MethodPost, "/blogs.json")
			Expect(m.Params).To(Equal(router.Params{"controller": "blogs", "action": "create", "format": "json"}))
		})

		It("routes members and member actions", func() {
			Expect(match(http.MethodGet, "/blogs/3").Name()).To(Equal("blog"))
			Expect(match(http.MethodGet, "/blogs/3/edit").Name()).To(Equal("edit_blog"))
			Expect(match(http.MethodPost, "/blogs/3/publish").Name()).To(Equal("publish_blog"))
			Expect(match(http.MethodDelete, "/blogs/3").Params).To(HaveKeyWithValue("action", "destroy"))
		})

		It("generates the conventional paths", func() {
			Expect(r.Generate("blogs", nil, nil)).To(Equal("/blogs"))
			Expect(r.Generate("new_blog", nil, nil)).To(Equal("/blogs/new"))
			Expect(r.Generate("edit_blog", map[string]any{"id": 3}, nil)).To(Equal("/blogs/3/edit"))
		})
	})

	Describe("nested resources", func() {
		It("carries the parent key", func() {
			m := match(http.MethodGet, "/blogs/5/posts/9")
			Expect(m.Name()).To(Equal("blog_post"))
			Expect(m.Params).To(HaveKeyWithValue("blog_id", "5"))
			Expect(m.Params).To(HaveKeyWithValue("id", "9"))
		})

		It("prefers collection actions over members", func() {
			m := match(http.MethodGet, "/blogs/5/posts/drafts")
			Expect(m.Name()).To(Equal("blog_drafts_posts"))
		})

		It("generates from objects", func() {
			Expect(r.Generate("blog_post", post{id: 9, blog: 5}, nil)).To(Equal("/blogs/5/posts/9"))
			Expect(r.Generate("blog_post", map[string]any{"id": post{id: 9, blog: 5}, "page": 2}, nil)).
				To(Equal("/blogs/5/posts/9?page=2"))
		})
	})

	Describe("singular resources", func() {
		It("routes without an id", func() {
			Expect(match(http.MethodGet, "/account").Params).To(Equal(router.Params{"controller": "accounts", "action": "show"}))
			Expect(match(http.MethodPut, "/account").Params).To(HaveKeyWithValue("action", "update"))
			Expect(r.Generate("edit_account", nil, nil)).To(Equal("/account/edit"))
		})
	})

	Describe("namespaced resources", func() {
		It("prefixes controller, path and name", func() {
			m := match(http.MethodGet, "/admin/users/1")
			Expect(m.Name()).To(Equal("admin_user"))
			Expect(m.Params).To(HaveKeyWithValue("controller", "admin/users"))
		})
	})

	Describe("default routes", func() {
		It("catches what the resources do not", func() {
			m := match(http.MethodGet, "/reports/summary/7.csv")
			Expect(m.Name()).To(Equal("default"))
			Expect(m.Params).To(Equal(router.Params{
				"controller": "reports", "action": "summary", "id": "7", "format": "csv",
			}))
		})

		It("misses paths deeper than the default route", func() {
			m := match(http.MethodGet, "/a/b/c/d")
			Expect(m.Found()).To(BeFalse())
		})
	})

	Describe("root", func() {
		It("matches the root path", func() {
			Expect(match(http.MethodGet, "/").Name()).To(Equal("root"))
			Expect(r.Generate("root", nil, nil)).To(Equal("/"))
		})
	})
})
