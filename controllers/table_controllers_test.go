package controllers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/pos-app/models"
)

func TestCreateAndListTables(t *testing.T) {
	env := setupTestEnv(t)
	token := env.login(t, models.RoleManager)

	w, body := env.do(t, http.MethodPost, "/api/table/", token, map[string]interface{}{"table_no": 1, "seats": 6})
	require.Equal(t, http.StatusCreated, w.Code, body.Message)
	var table models.Table
	require.NoError(t, json.Unmarshal(body.Data, &table))
	assert.Equal(t, models.TableStatusAvailable, table.Status)
	assert.Equal(t, 6, table.Seats)

	w, _ = env.do(t, http.MethodPost, "/api/table/", token, map[string]interface{}{"table_no": 1})
	assert.Equal(t, http.StatusConflict, w.Code)

	w, _ = env.do(t, http.MethodPost, "/api/table/", token, map[string]interface{}{"table_no": 2, "status": "dirty"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, body = env.do(t, http.MethodPost, "/api/table/", token, map[string]interface{}{"table_no": 2})
	require.Equal(t, http.StatusCreated, w.Code)
	require.NoError(t, json.Unmarshal(body.Data, &table))
	assert.Equal(t, 2, table.Seats)

	w, body = env.do(t, http.MethodGet, "/api/table/", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "List of tables", body.Message)
	var tables []models.Table
	require.NoError(t, json.Unmarshal(body.Data, &tables))
	require.Len(t, tables, 2)
	assert.Equal(t, 1, tables[0].TableNo)
}

func TestUpdateTable(t *testing.T) {
	env := setupTestEnv(t)
	token := env.login(t, models.RoleWaiter)
	table := createTable(t, env, 5)
	path := fmt.Sprintf("/api/table/%d", table.ID)

	order := models.Order{CustomerName: "Asha", Status: models.OrderStatusInProgress}
	require.NoError(t, env.DB.Create(&order).Error)

	w, body := env.do(t, http.MethodPut, path, token, map[string]interface{}{
		"status":           models.TableStatusBooked,
		"current_order_id": order.ID,
	})
	require.Equal(t, http.StatusOK, w.Code, body.Message)
	require.NoError(t, json.Unmarshal(body.Data, &table))
	assert.Equal(t, models.TableStatusBooked, table.Status)
	require.NotNil(t, table.CurrentOrderID)
	assert.Equal(t, order.ID, *table.CurrentOrderID)

	w, body = env.do(t, http.MethodPut, path, token, map[string]interface{}{"status": models.TableStatusAvailable})
	require.Equal(t, http.StatusOK, w.Code)
	table = models.Table{}
	require.NoError(t, json.Unmarshal(body.Data, &table))
	assert.Nil(t, table.CurrentOrderID)

	w, _ = env.do(t, http.MethodPut, path, token, map[string]interface{}{"status": "occupied"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = env.do(t, http.MethodPut, path, token, map[string]interface{}{"status": models.TableStatusBooked, "current_order_id": 999})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = env.do(t, http.MethodPut, "/api/table/999", token, map[string]interface{}{"status": models.TableStatusBooked})
	assert.Equal(t, http.StatusNotFound, w.Code)
}
