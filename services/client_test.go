package services

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rizwana27/psa/db"
)

func TestClientService_CreateClient(t *testing.T) {
	pg, mockDB, err := sqlmock.New()
	require.NoError(t, err)
	defer pg.Close()

	svc := NewClientService(pg)

	mockDB.ExpectExec("INSERT INTO clients").
		WithArgs(sqlmock.AnyArg(), "Acme Corp", "Manufacturing", "Jane Roe", "jane@acme.test",
			"", "active", true, sqlmock.AnyArg(), sqlmock.AnyArg(), "user-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	client, err := svc.CreateClient(db.CreateClientRequest{
		Name:        "Acme Corp",
		Industry:    "Manufacturing",
		ContactName: "Jane Roe",
		Email:       "jane@acme.test",
	}, "user-1")

	require.NoError(t, err)
	assert.NotEmpty(t, client.ID)
	// Status defaults to active when the request leaves it empty
	assert.Equal(t, "active", client.Status)
	assert.True(t, client.IsActive)
	assert.NoError(t, mockDB.ExpectationsWereMet())
}

func TestClientService_GetClient(t *testing.T) {
	pg, mockDB, err := sqlmock.New()
	require.NoError(t, err)
	defer pg.Close()

	svc := NewClientService(pg)

	rows := sqlmock.NewRows([]string{
		"id", "name", "industry", "contact_name", "email", "phone",
		"status", "is_active", "created_at", "updated_at", "created_by", "project_count",
	}).AddRow(
		"client-1", "Acme Corp", "Manufacturing", "Jane Roe", "jane@acme.test", "",
		"active", true, time.Now(), time.Now(), "user-1", 3,
	)

	mockDB.ExpectQuery("SELECT .* FROM clients").WithArgs("client-1").WillReturnRows(rows)

	client, err := svc.GetClient("client-1")
	require.NoError(t, err)
	assert.Equal(t, "Acme Corp", client.Name)
	assert.Equal(t, 3, client.ProjectCount)
	assert.NoError(t, mockDB.ExpectationsWereMet())
}

func TestClientService_GetClient_NotFound(t *testing.T) {
	pg, mockDB, err := sqlmock.New()
	require.NoError(t, err)
	defer pg.Close()

	svc := NewClientService(pg)

	rows := sqlmock.NewRows([]string{
		"id", "name", "industry", "contact_name", "email", "phone",
		"status", "is_active", "created_at", "updated_at", "created_by", "project_count",
	})
	mockDB.ExpectQuery("SELECT .* FROM clients").WithArgs("missing").WillReturnRows(rows)

	_, err = svc.GetClient("missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestClientService_ListClients_DefaultsToActive(t *testing.T) {
	pg, mockDB, err := sqlmock.New()
	require.NoError(t, err)
	defer pg.Close()

	svc := NewClientService(pg)

	rows := sqlmock.NewRows([]string{
		"id", "name", "industry", "contact_name", "email", "phone",
		"status", "is_active", "created_at", "updated_at", "created_by",
	}).AddRow(
		"client-1", "Acme Corp", "", "", "", "",
		"active", true, time.Now(), time.Now(), "",
	)

	// No is_active filter supplied, so the query pins is_active = true
	mockDB.ExpectQuery(`SELECT .* FROM clients c\s+WHERE 1=1 AND c\.is_active = true ORDER BY c\.name ASC`).
		WillReturnRows(rows)

	clients, err := svc.ListClients(map[string]interface{}{})
	require.NoError(t, err)
	assert.Len(t, clients, 1)
	assert.NoError(t, mockDB.ExpectationsWereMet())
}

func TestClientService_ListClients_SearchFilter(t *testing.T) {
	pg, mockDB, err := sqlmock.New()
	require.NoError(t, err)
	defer pg.Close()

	svc := NewClientService(pg)

	rows := sqlmock.NewRows([]string{
		"id", "name", "industry", "contact_name", "email", "phone",
		"status", "is_active", "created_at", "updated_at", "created_by",
	})

	mockDB.ExpectQuery("SELECT .* FROM clients").
		WithArgs("prospect", "%acme%", "%acme%").
		WillReturnRows(rows)

	clients, err := svc.ListClients(map[string]interface{}{
		"status": "prospect",
		"search": "acme",
	})
	require.NoError(t, err)
	assert.Empty(t, clients)
	assert.NoError(t, mockDB.ExpectationsWereMet())
}

func TestClientService_DeleteClient_NotFound(t *testing.T) {
	pg, mockDB, err := sqlmock.New()
	require.NoError(t, err)
	defer pg.Close()

	svc := NewClientService(pg)

	mockDB.ExpectExec("UPDATE clients SET is_active = false").
		WithArgs(sqlmock.AnyArg(), "missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err = svc.DeleteClient("missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestClientService_UpdateClient_MergesFields(t *testing.T) {
	pg, mockDB, err := sqlmock.New()
	require.NoError(t, err)
	defer pg.Close()

	svc := NewClientService(pg)

	rows := sqlmock.NewRows([]string{
		"id", "name", "industry", "contact_name", "email", "phone",
		"status", "is_active", "created_at", "updated_at", "created_by", "project_count",
	}).AddRow(
		"client-1", "Acme Corp", "Manufacturing", "Jane Roe", "jane@acme.test", "",
		"active", true, time.Now(), time.Now(), "user-1", 0,
	)
	mockDB.ExpectQuery("SELECT .* FROM clients").WithArgs("client-1").WillReturnRows(rows)

	mockDB.ExpectExec("UPDATE clients").
		WithArgs("client-1", "Acme Holdings", "Manufacturing", "Jane Roe", "jane@acme.test",
			"", "inactive", true, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	name := "Acme Holdings"
	status := "inactive"
	client, err := svc.UpdateClient("client-1", db.UpdateClientRequest{Name: &name, Status: &status})
	require.NoError(t, err)
	assert.Equal(t, "Acme Holdings", client.Name)
	assert.Equal(t, "inactive", client.Status)
	// Untouched fields survive the merge
	assert.Equal(t, "Manufacturing", client.Industry)
	assert.NoError(t, mockDB.ExpectationsWereMet())
}
