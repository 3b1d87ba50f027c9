package echoapi_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/trezcool/gradebook/core"
	"github.com/trezcool/gradebook/core/school"
	"github.com/trezcool/gradebook/testutil"
)

func Test_classApi(t *testing.T) {
	env := setup(t)
	ctx := context.Background()
	cls1 := testutil.CreateClass(t, env.store.Classes, "10A1")
	cls2 := testutil.CreateClass(t, env.store.Classes, "10A2")
	testutil.CreateStudent(t, env.store.Students, "HS001", "Nguyen Van A", cls1.ID)
	cls1, _ = env.svcs.Classes.GetByID(ctx, cls1.ID)

	required := map[string]string{"name": "this field is required"}
	dupName := map[string]string{"name": core.NewDuplicateKeyError(school.ResourceClass, "name", "10A1").Error()}
	notFound := httpErr{Error: core.NewNotFoundError(school.ResourceClass, 999).Error()}

	env.run(t, []httpTest{
		{name: "list", path: "/classes", wantCode: http.StatusOK, wantData: marchallList(t, cls1, cls2)},
		{name: "retrieve", path: "/classes/1", wantCode: http.StatusOK, wantData: marchallObj(t, cls1)},
		{name: "retrieve (trailing slash)", path: "/classes/2/", wantCode: http.StatusOK, wantData: marchallObj(t, cls2)},
		{name: "retrieve (unknown)", path: "/classes/999", wantCode: http.StatusNotFound, wantData: marchallObj(t, notFound)},
		{name: "retrieve (bad id)", path: "/classes/abc", wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "not found"})},
		{
			name: "create (blank name)", method: http.MethodPost, path: "/classes", body: []byte(`{"name": "  "}`),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, required),
		},
		{
			name: "create (duplicate)", method: http.MethodPost, path: "/classes", body: []byte(`{"name": " 10A1"}`),
			wantCode: http.StatusConflict, wantData: marchallObj(t, dupName),
		},
		{
			name: "update (duplicate)", method: http.MethodPatch, path: "/classes/2", body: []byte(`{"name": "10A1"}`),
			wantCode: http.StatusConflict, wantData: marchallObj(t, dupName),
		},
		{
			name: "update (unknown)", method: http.MethodPatch, path: "/classes/999", body: []byte(`{"name": "11B1"}`),
			wantCode: http.StatusNotFound, wantData: marchallObj(t, notFound),
		},
		{
			name: "delete (has students)", method: http.MethodDelete, path: "/classes/1",
			wantCode: http.StatusConflict, wantData: marchallObj(t, httpErr{Error: "class 1 still has 1 student(s)"}),
		},
		{name: "delete (unknown)", method: http.MethodDelete, path: "/classes/999", wantCode: http.StatusNotFound, wantData: marchallObj(t, notFound)},
	})

	t.Run("create", func(t *testing.T) {
		req, rec := newRequest(http.MethodPost, "/classes", []byte(`{"name": " 11B1 "}`))
		env.app.ServeHTTP(rec, req)

		classes, err := env.svcs.Classes.QueryAll(ctx)
		if err != nil {
			t.Fatalf("QueryAll(): %v", err)
		}
		created := classes[len(classes)-1]
		if created.Name != "11B1" {
			t.Errorf("failed! name = %v; want 11B1", created.Name)
		}
		checkCodeAndData(t, httpTest{wantCode: http.StatusCreated, wantData: marchallObj(t, created)}, rec)
	})

	t.Run("update", func(t *testing.T) {
		req, rec := newRequest(http.MethodPatch, "/classes/2", []byte(`{"name": "10A3"}`))
		env.app.ServeHTTP(rec, req)

		got, err := env.svcs.Classes.GetByID(ctx, cls2.ID)
		if err != nil {
			t.Fatalf("GetByID(): %v", err)
		}
		if got.Name != "10A3" {
			t.Errorf("failed! name = %v; want 10A3", got.Name)
		}
		checkCodeAndData(t, httpTest{wantCode: http.StatusOK, wantData: marchallObj(t, got)}, rec)
	})

	t.Run("delete", func(t *testing.T) {
		req, rec := newRequest(http.MethodDelete, "/classes/2")
		env.app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusNoContent}, rec)

		if _, err := env.svcs.Classes.GetByID(ctx, cls2.ID); !core.IsNotFound(err) {
			t.Errorf("failed! err = %v; want not found", err)
		}
	})
}
