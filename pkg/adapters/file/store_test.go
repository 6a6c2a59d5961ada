package file_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/nody/pkg/adapters/file"
	"github.com/aretw0/nody/pkg/domain"
	contract "github.com/aretw0/nody/pkg/ports/tests"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStore_Contract(t *testing.T) {
	contract.RunGraphStoreContract(t, file.New(t.TempDir()))
}

const menuYAML = `
name: Main Menu
nodes:
  - id: start
    type: start
  - id: modal
    type: switch_back
    data:
      sources: [From Menu, From HUD]
  - id: level
    type: sub_graph
    data:
      graph: level-1
connections:
  - output_node: start
    input_node: modal
    input_socket: "1"
`

func TestFileStore_LoadYAML(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "menu.yml"), []byte(menuYAML), 0644))
	store := file.New(dir)

	doc, err := store.LoadGraph(context.Background(), "menu")
	require.NoError(t, err)

	assert.Equal(t, "menu", doc.ID, "id defaults to the file name")
	assert.Equal(t, "Main Menu", doc.Name)
	require.Len(t, doc.Nodes, 3)
	assert.Equal(t, domain.NodeTypeSwitchBack, doc.Nodes[1].Type)
	assert.Equal(t, []any{"From Menu", "From HUD"}, doc.Nodes[1].Data[domain.KeySources])
	assert.Equal(t, []string{"level-1"}, doc.SubGraphRefs())
	assert.Equal(t, "1", doc.Connections[0].InputSocket)
}

func TestFileStore_LoadJSON(t *testing.T) {
	dir := t.TempDir()
	body := `{"id": "level-1", "sub_graph": true, "nodes": [{"id": "in", "type": "enter"}, {"id": "out", "type": "exit"}]}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "level-1.json"), []byte(body), 0644))

	doc, err := file.New(dir).LoadGraph(context.Background(), "level-1")
	require.NoError(t, err)
	assert.True(t, doc.SubGraph)
	assert.Len(t, doc.Nodes, 2)
}

func TestFileStore_SaveReplacesOtherFormats(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "menu.json"), []byte(`{"id":"menu","nodes":[]}`), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0644))
	store := file.New(dir)

	err := store.SaveGraph(context.Background(), &domain.GraphDocument{ID: "menu", Version: "2"})
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(dir, "menu.json"))
	assert.True(t, os.IsNotExist(err))
	doc, err := store.LoadGraph(context.Background(), "menu")
	require.NoError(t, err)
	assert.Equal(t, "2", doc.Version)

	ids, err := store.ListGraphs(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"menu"}, ids)
}

func TestFileStore_MissingDirectory(t *testing.T) {
	store := file.New(filepath.Join(t.TempDir(), "nope"))
	ids, err := store.ListGraphs(context.Background())
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestFileStore_InvalidDocument(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.yaml"), []byte("nodes: [unclosed"), 0644))

	_, err := file.New(dir).LoadGraph(context.Background(), "bad")
	assert.Error(t, err)
}
