package deploy

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/cloudformation/types"
	"github.com/fatih/color"
	"github.com/r3labs/diff"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeployer_Diff(t *testing.T) {
	assert := assert.New(t)
	d, cf, _, _ := testDeployer(t)
	// deployed as YAML, synthesized as JSON
	cf.putStack("Base", types.StackStatusCreateComplete, `Resources:
  Vpc:
    Type: AWS::EC2::VPC
    Properties:
      CidrBlock: 10.1.0.0/16
  Igw:
    Type: AWS::EC2::InternetGateway
`)

	diffs, err := d.Diff(context.Background(), testAssembly(), nil)
	require.NoError(t, err)
	require.Len(t, diffs, 2)

	assert.Equal("Base", diffs[0].Stack)
	assert.False(diffs[0].New)
	changes := make(map[string]diff.Change)
	for _, c := range diffs[0].Changes {
		changes[strings.Join(c.Path[:min(len(c.Path), 2)], ".")+" "+c.Type] = c
	}
	if assert.Contains(changes, "Resources.Vpc update") {
		c := changes["Resources.Vpc update"]
		assert.Equal([]string{"Resources", "Vpc", "Properties", "CidrBlock"}, c.Path)
		assert.Equal("10.1.0.0/16", c.From)
		assert.Equal("10.0.0.0/16", c.To)
	}
	assert.Contains(changes, "Resources.Igw delete")
	assert.Len(changes, 2)

	assert.Equal(StackDiff{Stack: "Servers", New: true}, diffs[1])

	color.NoColor = true
	buf := new(bytes.Buffer)
	require.NoError(t, PrintDiff(buf, diffs[1:]))
	assert.Equal("Stack Servers\n  [+] new stack\n", buf.String())

	buf.Reset()
	require.NoError(t, PrintDiff(buf, []StackDiff{{Stack: "Base", Changes: diff.Changelog{
		{Type: diff.UPDATE, Path: []string{"Resources", "Vpc", "Properties", "CidrBlock"}, From: "10.1.0.0/16", To: "10.0.0.0/16"},
		{Type: diff.CREATE, Path: []string{"Outputs", "RepositoryUri"}, To: "uri"},
	}}}))
	assert.Equal(`Stack Base
  [~] Resources.Vpc.Properties.CidrBlock: 10.1.0.0/16 -> 10.0.0.0/16
  [+] Outputs.RepositoryUri: uri
`, buf.String())
}

func TestDeployer_Diff_NoDifferences(t *testing.T) {
	d, cf, _, _ := testDeployer(t)
	cf.putStack("Base", types.StackStatusCreateComplete, baseTemplate)

	diffs, err := d.Diff(context.Background(), testAssembly(), []string{"Base"})
	require.NoError(t, err)
	require.Len(t, diffs, 1)
	assert.Empty(t, diffs[0].Changes)

	color.NoColor = true
	buf := new(bytes.Buffer)
	require.NoError(t, PrintDiff(buf, diffs))
	assert.Equal(t, "Stack Base\n  no differences\n", buf.String())
}
