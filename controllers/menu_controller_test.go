package controllers

import (
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/deifrati/api/storage"
	"github.com/deifrati/api/utils"
)

func menuRouter(db *gorm.DB, store storage.Storage) *gin.Engine {
	mc := NewMenuController(db, store)
	r := gin.New()
	r.GET("/api/menu", mc.GetMenu)
	r.GET("/api/menu/categories", mc.ListCategories)
	r.POST("/api/menu/categories", mc.CreateCategory)
	r.PUT("/api/menu/categories/:id", mc.UpdateCategory)
	r.DELETE("/api/menu/categories/:id", mc.DeleteCategory)
	r.POST("/api/menu/items", mc.CreateItem)
	r.PUT("/api/menu/items/:id", mc.UpdateItem)
	r.DELETE("/api/menu/items/:id", mc.DeleteItem)
	return r
}

func TestGetMenu_PreloadsItemsAndCaches(t *testing.T) {
	utils.InvalidateByPrefix("menu:")
	t.Cleanup(func() { utils.InvalidateByPrefix("menu:") })

	db, mock := newMockDB(t)
	mock.ExpectQuery("FROM `menu_categories`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "description", "image_url", "created_at"}).
			AddRow(1, "Primi", nil, "https://cdn.example.com/media/site/Primi/cover.jpg", time.Now()))
	mock.ExpectQuery("FROM `menu_items`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "category_id", "name", "allergens", "ingredients", "price", "is_available"}).
			AddRow(10, 1, "Tagliatelle al ragù", `["glutine","uova"]`, "pasta, ragù", 14.5, true).
			AddRow(11, 1, "Risotto", "", "", 16, false))

	r := menuRouter(db, nil)
	w := doJSON(r, http.MethodGet, "/api/menu", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	first := w.Body.String()

	categories := decode(t, w)["categories"].([]interface{})
	require.Len(t, categories, 1)
	primi := categories[0].(map[string]interface{})
	assert.Equal(t, "Primi", primi["name"])
	items := primi["items"].([]interface{})
	require.Len(t, items, 2)

	ragu := items[0].(map[string]interface{})
	assert.Equal(t, []interface{}{"glutine", "uova"}, ragu["allergens"])
	assert.Equal(t, []interface{}{"pasta", "ragù"}, ragu["ingredients"])
	assert.Equal(t, 14.5, ragu["price"])
	assert.Equal(t, true, ragu["is_available"])

	risotto := items[1].(map[string]interface{})
	assert.Equal(t, []interface{}{}, risotto["allergens"])
	assert.Equal(t, false, risotto["is_available"])

	// second read is served from cache without touching the database
	w = doJSON(r, http.MethodGet, "/api/menu", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, first, w.Body.String())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetMenu_DatabaseError(t *testing.T) {
	utils.InvalidateByPrefix("menu:")

	db, mock := newMockDB(t)
	mock.ExpectQuery("FROM `menu_categories`").WillReturnError(errors.New("connection refused"))

	w := doJSON(menuRouter(db, nil), http.MethodGet, "/api/menu", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	body := decode(t, w)
	assert.Equal(t, "Error fetching menu", body["message"])
	assert.Equal(t, "connection refused", body["error"])
}

func TestCreateCategory_CreatesFolderOnS3(t *testing.T) {
	db, mock := newMockDB(t)
	expectWrite(mock, "INSERT INTO `menu_categories`", driverResult{id: 3, rows: 1})
	store := newFakeStore(storage.DriverS3, "")

	w := doJSON(menuRouter(db, store), http.MethodPost, "/api/menu/categories",
		map[string]interface{}{"name": "Secondi di pesce", "description": "Dal mare"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	body := decode(t, w)
	assert.Equal(t, "Category created successfully", body["message"])
	assert.Equal(t, float64(3), body["categoryId"])
	assert.Equal(t, []string{"site/SecondiDiPesce"}, store.folders)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateCategory_NoFolderOnLocal(t *testing.T) {
	db, mock := newMockDB(t)
	expectWrite(mock, "INSERT INTO `menu_categories`", driverResult{id: 4, rows: 1})
	store := newFakeStore(storage.DriverLocal, "/uploads/")

	w := doJSON(menuRouter(db, store), http.MethodPost, "/api/menu/categories", map[string]interface{}{"name": "Dolci"})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Empty(t, store.folders)
}

func TestCreateCategory_RequiresName(t *testing.T) {
	db, _ := newMockDB(t)
	w := doJSON(menuRouter(db, nil), http.MethodPost, "/api/menu/categories", map[string]interface{}{"name": "  "})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "name is required", decode(t, w)["message"])
}

func TestUpdateCategory(t *testing.T) {
	db, mock := newMockDB(t)
	r := menuRouter(db, nil)

	w := doJSON(r, http.MethodPut, "/api/menu/categories/2", map[string]interface{}{"unknown": 1})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "No fields provided to update", decode(t, w)["message"])

	w = doJSON(r, http.MethodPut, "/api/menu/categories/abc", map[string]interface{}{"name": "x"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid id", decode(t, w)["message"])

	expectWrite(mock, "UPDATE `menu_categories` SET", driverResult{rows: 1})
	w = doJSON(r, http.MethodPut, "/api/menu/categories/2", map[string]interface{}{"image_url": "https://cdn/x.jpg"})
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Category updated successfully", decode(t, w)["message"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteCategory_RemovesItemsFirst(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM `menu_items` WHERE category_id = ").WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec("DELETE FROM `menu_categories`").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	w := doJSON(menuRouter(db, nil), http.MethodDelete, "/api/menu/categories/7", nil)
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Category deleted successfully", decode(t, w)["message"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteCategory_RollsBack(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM `menu_items`").WillReturnError(errors.New("lock wait timeout"))
	mock.ExpectRollback()

	w := doJSON(menuRouter(db, nil), http.MethodDelete, "/api/menu/categories/7", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Error deleting category", decode(t, w)["message"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateItem_Validation(t *testing.T) {
	db, _ := newMockDB(t)
	r := menuRouter(db, nil)

	cases := []struct {
		name string
		body map[string]interface{}
		msg  string
	}{
		{"missing category", map[string]interface{}{"name": "Risotto", "price": 12}, "category_id is required and must be a number"},
		{"category not numeric", map[string]interface{}{"category_id": "primi", "name": "Risotto", "price": 12}, "category_id is required and must be a number"},
		{"missing name", map[string]interface{}{"category_id": 1, "price": 12}, "name is required"},
		{"missing price", map[string]interface{}{"category_id": 1, "name": "Risotto"}, "price is required and must be a number"},
		{"price not numeric", map[string]interface{}{"category_id": 1, "name": "Risotto", "price": "dodici"}, "price is required and must be a number"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := doJSON(r, http.MethodPost, "/api/menu/items", tc.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, tc.msg, decode(t, w)["message"])
		})
	}
}

func TestCreateItem(t *testing.T) {
	db, mock := newMockDB(t)
	expectWrite(mock, "INSERT INTO `menu_items`", driverResult{id: 21, rows: 1})

	w := doJSON(menuRouter(db, nil), http.MethodPost, "/api/menu/items", map[string]interface{}{
		"category_id": 1,
		"name":        "Risotto ai funghi",
		"price":       "16.50",
		"allergens":   []string{"latte"},
		"image_url":   "https://cdn.example.com/media/site/Primi/RisottoAiFunghi.jpg",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	body := decode(t, w)
	assert.Equal(t, "Menu item created successfully", body["message"])
	assert.Equal(t, float64(21), body["itemId"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateAndDeleteItem(t *testing.T) {
	db, mock := newMockDB(t)
	r := menuRouter(db, nil)

	w := doJSON(r, http.MethodPut, "/api/menu/items/5", map[string]interface{}{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "No fields provided to update", decode(t, w)["message"])

	expectWrite(mock, "UPDATE `menu_items` SET", driverResult{rows: 1})
	w = doJSON(r, http.MethodPut, "/api/menu/items/5", map[string]interface{}{"is_available": "0", "ingredients": "riso, funghi"})
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Menu item updated successfully", decode(t, w)["message"])

	expectWrite(mock, "DELETE FROM `menu_items`", driverResult{rows: 1})
	w = doJSON(r, http.MethodDelete, "/api/menu/items/5", nil)
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Menu item deleted successfully", decode(t, w)["message"])
	assert.NoError(t, mock.ExpectationsWereMet())
}
