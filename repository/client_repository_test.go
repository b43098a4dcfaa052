package repository

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lottohouse/domain/entities"
	"lottohouse/repository/testutil"
)

func TestClientRepository_GetByID(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	repo := NewClientRepository(testDB.DB)
	ctx := context.Background()

	t.Run("client not found", func(t *testing.T) {
		client, err := repo.GetByID(ctx, 999999)
		require.NoError(t, err)
		assert.Nil(t, client)
	})

	t.Run("client found", func(t *testing.T) {
		testClient := testutil.CreateTestClient("acme")
		require.NoError(t, repo.Create(ctx, testClient))

		client, err := repo.GetByID(ctx, testClient.ID)
		require.NoError(t, err)
		require.NotNil(t, client)

		assert.Equal(t, testClient.ID, client.ID)
		assert.Equal(t, "acme", client.Name)
		assert.Equal(t, entities.RoleClient, client.Role)
		assert.True(t, client.Balance.IsZero())
		assert.True(t, client.Active)
		assert.False(t, client.CreatedAt.IsZero())
		assert.False(t, client.UpdatedAt.IsZero())
	})
}

func TestClientRepository_Create(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	repo := NewClientRepository(testDB.DB)
	ctx := context.Background()

	t.Run("assigns id and timestamps", func(t *testing.T) {
		testClient := testutil.CreateTestClient("acme")

		err := repo.Create(ctx, testClient)
		require.NoError(t, err)

		assert.NotZero(t, testClient.ID)
		assert.False(t, testClient.CreatedAt.IsZero())
		assert.False(t, testClient.UpdatedAt.IsZero())
	})

	t.Run("starting balance is persisted", func(t *testing.T) {
		testClient := testutil.CreateTestClientWithBalance("globex", decimal.NewFromInt(500))
		require.NoError(t, repo.Create(ctx, testClient))

		client, err := repo.GetByID(ctx, testClient.ID)
		require.NoError(t, err)
		assert.True(t, client.Balance.Equal(decimal.NewFromInt(500)))
	})

	t.Run("second admin is rejected", func(t *testing.T) {
		second := testutil.CreateTestClient("shadow-house")
		second.Role = entities.RoleAdmin

		err := repo.Create(ctx, second)
		assert.Error(t, err)
	})
}

func TestClientRepository_GetAdmin(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	repo := NewClientRepository(testDB.DB)
	ctx := context.Background()

	// Migrations seed the operator account
	admin, err := repo.GetAdmin(ctx)
	require.NoError(t, err)
	require.NotNil(t, admin)

	assert.Equal(t, "house", admin.Name)
	assert.Equal(t, entities.RoleAdmin, admin.Role)
	assert.True(t, admin.Balance.IsZero())
	assert.True(t, admin.IsAdmin())
}

func TestClientRepository_UpdateBalance(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	repo := NewClientRepository(testDB.DB)
	ctx := context.Background()

	t.Run("successful update", func(t *testing.T) {
		testClient := testutil.CreateTestClientWithBalance("acme", decimal.NewFromInt(500))
		require.NoError(t, repo.Create(ctx, testClient))

		err := repo.UpdateBalance(ctx, testClient.ID, decimal.NewFromInt(350))
		require.NoError(t, err)

		client, err := repo.GetByID(ctx, testClient.ID)
		require.NoError(t, err)
		assert.True(t, client.Balance.Equal(decimal.NewFromInt(350)))
	})

	t.Run("client not found", func(t *testing.T) {
		err := repo.UpdateBalance(ctx, 999999, decimal.NewFromInt(100))
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "not found")
	})

	t.Run("zero balance", func(t *testing.T) {
		testClient := testutil.CreateTestClientWithBalance("globex", decimal.NewFromInt(50))
		require.NoError(t, repo.Create(ctx, testClient))

		err := repo.UpdateBalance(ctx, testClient.ID, decimal.Zero)
		require.NoError(t, err)

		client, err := repo.GetByID(ctx, testClient.ID)
		require.NoError(t, err)
		assert.True(t, client.Balance.IsZero())
	})

	t.Run("negative balance rejected for clients", func(t *testing.T) {
		testClient := testutil.CreateTestClientWithBalance("initech", decimal.NewFromInt(50))
		require.NoError(t, repo.Create(ctx, testClient))

		err := repo.UpdateBalance(ctx, testClient.ID, decimal.NewFromInt(-10))
		assert.Error(t, err)
	})
}

func TestClientRepository_ApplyAdminBalanceDelta(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	repo := NewClientRepository(testDB.DB)
	ctx := context.Background()

	// Stakes flow in, prizes flow out, and the house may run negative
	require.NoError(t, repo.ApplyAdminBalanceDelta(ctx, decimal.NewFromInt(50)))

	admin, err := repo.GetAdmin(ctx)
	require.NoError(t, err)
	assert.True(t, admin.Balance.Equal(decimal.NewFromInt(50)))

	require.NoError(t, repo.ApplyAdminBalanceDelta(ctx, decimal.NewFromInt(-95)))

	admin, err = repo.GetAdmin(ctx)
	require.NoError(t, err)
	assert.True(t, admin.Balance.Equal(decimal.NewFromInt(-45)))
}

func TestClientRepository_SetActive(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	repo := NewClientRepository(testDB.DB)
	ctx := context.Background()

	t.Run("deactivate and reactivate", func(t *testing.T) {
		testClient := testutil.CreateTestClient("acme")
		require.NoError(t, repo.Create(ctx, testClient))

		require.NoError(t, repo.SetActive(ctx, testClient.ID, false))

		client, err := repo.GetByID(ctx, testClient.ID)
		require.NoError(t, err)
		assert.False(t, client.Active)

		require.NoError(t, repo.SetActive(ctx, testClient.ID, true))

		client, err = repo.GetByID(ctx, testClient.ID)
		require.NoError(t, err)
		assert.True(t, client.Active)
	})

	t.Run("client not found", func(t *testing.T) {
		err := repo.SetActive(ctx, 999999, false)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "not found")
	})
}

func TestClientRepository_List(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	repo := NewClientRepository(testDB.DB)
	ctx := context.Background()

	client1 := testutil.CreateTestClient("acme")
	client2 := testutil.CreateTestClient("globex")
	require.NoError(t, repo.Create(ctx, client1))
	require.NoError(t, repo.Create(ctx, client2))

	clients, err := repo.List(ctx)
	require.NoError(t, err)

	// Seeded operator account plus the two created clients, in id order
	require.Len(t, clients, 3)
	assert.Equal(t, "house", clients[0].Name)
	assert.Equal(t, client1.ID, clients[1].ID)
	assert.Equal(t, client2.ID, clients[2].ID)
}
