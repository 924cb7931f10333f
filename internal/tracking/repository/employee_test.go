package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/timbra/timbra-backend/internal/tracking/repository"
	"github.com/timbra/timbra-backend/pkg/errors"
	"github.com/timbra/timbra-backend/pkg/testutil"
)

func TestEmployeeRepository_Create_DefaultsColor(t *testing.T) {
	db, mockDB := newTestDB(t)
	repo := repository.NewEmployeeRepository(db)

	now := time.Now().UTC()
	mockDB.Mock.ExpectQuery("INSERT INTO employees").
		WithArgs(testutil.AnyUUID{}, "Mario", "Rossi", nil, nil, repository.DefaultEmployeeColor).
		WillReturnRows(testutil.MockRows("created_at", "updated_at").AddRow(now, now))

	emp := &repository.Employee{FirstName: "Mario", LastName: "Rossi"}
	err := repo.Create(context.Background(), emp)
	require.NoError(t, err)

	assert.NotEmpty(t, emp.ID)
	assert.Equal(t, repository.DefaultEmployeeColor, emp.Color)
	assert.Equal(t, now, emp.CreatedAt)

	mockDB.ExpectationsWereMet(t)
}

func TestEmployeeRepository_Create_KeepsGivenColor(t *testing.T) {
	db, mockDB := newTestDB(t)
	repo := repository.NewEmployeeRepository(db)

	now := time.Now().UTC()
	mockDB.Mock.ExpectQuery("INSERT INTO employees").
		WithArgs(testutil.AnyUUID{}, "Luigi", "Verdi", nil, nil, "#e63946").
		WillReturnRows(testutil.MockRows("created_at", "updated_at").AddRow(now, now))

	emp := &repository.Employee{FirstName: "Luigi", LastName: "Verdi", Color: "#e63946"}
	err := repo.Create(context.Background(), emp)
	require.NoError(t, err)
	assert.Equal(t, "#e63946", emp.Color)
}

func TestEmployeeRepository_GetByID_NotFound(t *testing.T) {
	db, mockDB := newTestDB(t)
	repo := repository.NewEmployeeRepository(db)

	mockDB.Mock.ExpectQuery("FROM employees").
		WithArgs("missing").
		WillReturnRows(testutil.MockRows("id", "first_name", "last_name", "email", "hire_date", "color", "created_at", "updated_at"))

	emp, err := repo.GetByID(context.Background(), "missing")
	require.Error(t, err)
	assert.Nil(t, emp)
	assert.True(t, errors.IsNotFound(err))
}

func TestEmployeeRepository_List_OrderedByName(t *testing.T) {
	db, mockDB := newTestDB(t)
	repo := repository.NewEmployeeRepository(db)

	now := time.Now().UTC()
	mockDB.Mock.ExpectQuery("ORDER BY last_name, first_name").
		WillReturnRows(testutil.MockRows("id", "first_name", "last_name", "email", "hire_date", "color", "created_at", "updated_at").
			AddRow("emp-2", "Anna", "Bianchi", nil, nil, "#4361ee", now, now).
			AddRow("emp-1", "Mario", "Rossi", nil, nil, "#4361ee", now, now))

	employees, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, employees, 2)
	assert.Equal(t, "Bianchi", employees[0].LastName)
}

func TestEmployeeRepository_Update_NotFound(t *testing.T) {
	db, mockDB := newTestDB(t)
	repo := repository.NewEmployeeRepository(db)

	mockDB.Mock.ExpectExec("UPDATE employees").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Update(context.Background(), &repository.Employee{ID: "missing", FirstName: "X", LastName: "Y"})
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
}

func TestEmployeeRepository_Exists(t *testing.T) {
	db, mockDB := newTestDB(t)
	repo := repository.NewEmployeeRepository(db)

	mockDB.Mock.ExpectQuery("SELECT EXISTS").
		WithArgs("emp-1").
		WillReturnRows(testutil.MockRows("exists").AddRow(true))

	exists, err := repo.Exists(context.Background(), "emp-1")
	require.NoError(t, err)
	assert.True(t, exists)
}
