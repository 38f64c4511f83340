package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	natsserver "github.com/nats-io/nats-server/v2/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"repokit/users/application"
)

func writeConfig(t *testing.T, extra string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "repokit.yaml")
	content := fmt.Sprintf("backend: sqlite\ndsn: %s\nlog:\n  level: error\n%s", filepath.Join(dir, "users.db"), extra)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func run(t *testing.T, cfgPath string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--config", cfgPath}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func signupUser(t *testing.T, cfgPath, name, email string) userView {
	t.Helper()
	out, err := run(t, cfgPath, "signup", "--name", name, "--email", email, "--password", "secret")
	require.NoError(t, err)

	var u userView
	require.NoError(t, json.Unmarshal([]byte(out), &u))
	return u
}

func TestVersion(t *testing.T) {
	out, err := run(t, filepath.Join(t.TempDir(), "missing.yaml"), "version")
	require.NoError(t, err)
	assert.Equal(t, "usersctl v0.1.0\n", out)
}

func TestConfigErrors(t *testing.T) {
	_, err := run(t, filepath.Join(t.TempDir(), "missing.yaml"), "list")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load config")
}

func TestUsersLifecycle(t *testing.T) {
	cfg := writeConfig(t, "")

	alice := signupUser(t, cfg, "alice", "alice@a.com")
	assert.NotEmpty(t, alice.ID)

	t.Run("输出不含密码", func(t *testing.T) {
		out, err := run(t, cfg, "get", alice.ID)
		require.NoError(t, err)
		assert.NotContains(t, out, "password")
		assert.Contains(t, out, `"email": "alice@a.com"`)
	})

	t.Run("邮箱重复", func(t *testing.T) {
		_, err := run(t, cfg, "signup", "--name", "x", "--email", "alice@a.com", "--password", "secret")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Email already exists alice@a.com")
	})

	t.Run("缺少参数", func(t *testing.T) {
		_, err := run(t, cfg, "signup", "--name", "x")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Input data not provided")
	})

	signupUser(t, cfg, "bob", "bob@a.com")
	signupUser(t, cfg, "carol", "carol@a.com")

	t.Run("列表", func(t *testing.T) {
		out, err := run(t, cfg, "list", "--sort", "name", "--sort-dir", "desc", "--per-page", "2")
		require.NoError(t, err)

		var page application.PaginationOutput[userView]
		require.NoError(t, json.Unmarshal([]byte(out), &page))
		assert.Equal(t, 3, page.Total)
		assert.Equal(t, 2, page.LastPage)
		require.Len(t, page.Items, 2)
		assert.Equal(t, "carol", page.Items[0].Name)
		assert.Equal(t, "bob", page.Items[1].Name)

		out, err = run(t, cfg, "list", "--filter", "ALI")
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal([]byte(out), &page))
		require.Len(t, page.Items, 1)
		assert.Equal(t, alice.ID, page.Items[0].ID)
		assert.Equal(t, 15, page.PerPage)
	})

	t.Run("改名", func(t *testing.T) {
		out, err := run(t, cfg, "update", alice.ID, "--name", "alicia")
		require.NoError(t, err)
		assert.Contains(t, out, `"name": "alicia"`)

		_, err = run(t, cfg, "update", alice.ID)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Name not provided")
	})

	t.Run("修改密码", func(t *testing.T) {
		_, err := run(t, cfg, "update-password", alice.ID, "--old", "wrong", "--new", "next")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "OldPassword does not match")

		_, err = run(t, cfg, "update-password", alice.ID, "--old", "secret", "--new", "next")
		require.NoError(t, err)

		_, err = run(t, cfg, "update-password", alice.ID, "--old", "next", "--new", "again")
		require.NoError(t, err)
	})

	t.Run("删除", func(t *testing.T) {
		out, err := run(t, cfg, "delete", alice.ID)
		require.NoError(t, err)
		assert.Equal(t, "Deleted user "+alice.ID+"\n", out)

		_, err = run(t, cfg, "get", alice.ID)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "NOT_FOUND")
	})
}

func TestWatch(t *testing.T) {
	srv, err := natsserver.NewServer(&natsserver.Options{Port: -1})
	require.NoError(t, err)
	srv.Start()
	t.Cleanup(srv.Shutdown)
	require.True(t, srv.ReadyForConnections(3*time.Second))

	cfg := writeConfig(t, fmt.Sprintf("nats:\n  url: %s\n  subject: test.users\n", srv.ClientURL()))

	t.Run("未配置 nats", func(t *testing.T) {
		_, err := run(t, writeConfig(t, ""), "watch")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "nats.url is not configured")
	})

	type result struct {
		out string
		err error
	}
	done := make(chan result, 1)
	go func() {
		cmd := newRootCmd()
		var out bytes.Buffer
		cmd.SetOut(&out)
		cmd.SetArgs([]string{"--config", cfg, "watch", "--count", "1"})
		err := cmd.Execute()
		done <- result{out: out.String(), err: err}
	}()

	// watch 订阅就绪前发布的事件会丢失，持续注册直到 watch 退出
	deadline := time.After(10 * time.Second)
	for i := 0; ; i++ {
		_, err := run(t, cfg, "signup", "--name", "w", "--email", fmt.Sprintf("w%d@a.com", i), "--password", "secret")
		require.NoError(t, err)

		select {
		case r := <-done:
			require.NoError(t, r.err)
			assert.Contains(t, r.out, `"type": "entity.inserted"`)
			assert.NotContains(t, r.out, "password")
			assert.Equal(t, 1, strings.Count(r.out, `"entityId"`))
			return
		case <-deadline:
			t.Fatal("watch 未退出")
		case <-time.After(100 * time.Millisecond):
		}
	}
}
