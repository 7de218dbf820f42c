package deploy

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	cfn "github.com/aws/aws-sdk-go-v2/service/cloudformation"
	"github.com/aws/aws-sdk-go-v2/service/cloudformation/types"
	ecrtypes "github.com/aws/aws-sdk-go-v2/service/ecr/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/talves/gameservers/pkg/provider/aws/resources"
	"github.com/talves/gameservers/pkg/stack"
	gomock "go.uber.org/mock/gomock"
)

const (
	testBucket     = "gameservers-assets-123456789012-us-west-2"
	baseTemplate   = `{"Resources":{"Vpc":{"Type":"AWS::EC2::VPC","Properties":{"CidrBlock":"10.0.0.0/16"}}}}`
	serverTemplate = `{"Resources":{"Minecraft":{"Type":"AWS::CloudFormation::Stack"}}}`
)

// testAssembly is a base stack, and a parent stack depending on it with a nested stack and an environment file.
func testAssembly() *stack.Assembly {
	env := resources.NewContentAsset([]byte("EULA=TRUE\n"), ".env", resources.PackagingFile, testBucket)
	nested := resources.NewContentAsset([]byte(`{"Resources":{}}`), ".json", resources.PackagingTemplate, testBucket)
	return &stack.Assembly{
		Manifest: stack.Manifest{
			Version:     stack.MANIFEST_VERSION,
			AssetBucket: testBucket,
			Stacks: []stack.StackManifest{
				{Name: "Base", TemplateFile: "Base.template.json", Resources: 1},
				{
					Name:         "Minecraft",
					TemplateFile: "Minecraft.nested.template.json",
					Parent:       "Servers",
					Dependencies: []string{"Base"},
					Resources:    12,
					Assets:       []string{env.ObjectKey()},
				},
				{
					Name:         "Servers",
					TemplateFile: "Servers.template.json",
					Dependencies: []string{"Base"},
					Resources:    1,
					Assets:       []string{nested.ObjectKey(), env.ObjectKey()},
				},
			},
		},
		Bodies: map[string][]byte{
			"Base":      []byte(baseTemplate),
			"Minecraft": []byte(`{"Resources":{}}`),
			"Servers":   []byte(serverTemplate),
		},
		Assets: []*resources.FileAsset{nested, env},
	}
}

func testDeployer(t *testing.T) (*Deployer, *cloudFormationServer, *s3Server, *MockEcrClient) {
	cf := newCloudFormationServer()
	s3srv := newS3Server()
	s3srv.buckets[testBucket] = make(map[string][]byte)
	ecr := NewMockEcrClient(gomock.NewController(t))
	return &Deployer{
		Clients: &Clients{
			Region:         "us-west-2",
			CloudFormation: cf,
			S3:             s3srv,
			Ecr:            ecr,
		},
		Bucket:       testBucket,
		PollInterval: time.Millisecond,
	}, cf, s3srv, ecr
}

func TestDeployer_Deploy(t *testing.T) {
	type result struct {
		Stack     string
		Status    types.StackStatus
		Unchanged bool
	}
	tests := []struct {
		name     string
		setup    func(cf *cloudFormationServer, asm *stack.Assembly)
		opts     DeployOptions
		images   []ImageCheck
		mocks    func(ecr *MockEcrClient)
		want     []result
		wantErr  string
		validate func(t *testing.T, cf *cloudFormationServer, s3srv *s3Server)
	}{
		{
			name: "creates every stack in order",
			setup: func(cf *cloudFormationServer, asm *stack.Assembly) {
				cf.outputs["Base"] = map[string]string{"RepositoryUri": "123456789012.dkr.ecr.us-west-2.amazonaws.com/minecraft"}
			},
			want: []result{
				{Stack: "Base", Status: types.StackStatusCreateComplete},
				{Stack: "Servers", Status: types.StackStatusCreateComplete},
			},
			validate: func(t *testing.T, cf *cloudFormationServer, s3srv *s3Server) {
				assert := assert.New(t)
				require.Len(t, cf.changeSetInputs, 2)
				for _, in := range cf.changeSetInputs {
					assert.Equal(types.ChangeSetTypeCreate, in.ChangeSetType)
					assert.ElementsMatch([]types.Capability{
						types.CapabilityCapabilityNamedIam,
						types.CapabilityCapabilityAutoExpand,
					}, in.Capabilities)
					assert.True(strings.HasPrefix(aws.ToString(in.ChangeSetName), CHANGE_SET_PREFIX))
				}
				assert.Equal(baseTemplate, aws.ToString(cf.changeSetInputs[0].TemplateBody))
				assert.Equal(2, s3srv.puts)
				body, ok := s3srv.object(testBucket, testAssembly().Assets[1].ObjectKey())
				assert.True(ok)
				assert.Equal("EULA=TRUE\n", string(body))
			},
		},
		{
			name: "unchanged stack",
			setup: func(cf *cloudFormationServer, asm *stack.Assembly) {
				cf.putStack("Base", types.StackStatusUpdateComplete, baseTemplate)
			},
			opts: DeployOptions{Stacks: []string{"Base"}},
			want: []result{{Stack: "Base", Status: types.StackStatusUpdateComplete, Unchanged: true}},
			validate: func(t *testing.T, cf *cloudFormationServer, s3srv *s3Server) {
				assert := assert.New(t)
				assert.Equal([]string{"DeleteChangeSet Base"}, cf.calls)
				assert.Empty(cf.changeSets)
			},
		},
		{
			name: "updates a changed stack",
			setup: func(cf *cloudFormationServer, asm *stack.Assembly) {
				cf.putStack("Base", types.StackStatusCreateComplete, `{"Resources":{}}`)
			},
			opts: DeployOptions{Stacks: []string{"Base"}},
			want: []result{{Stack: "Base", Status: types.StackStatusUpdateComplete}},
			validate: func(t *testing.T, cf *cloudFormationServer, s3srv *s3Server) {
				assert.Equal(t, types.ChangeSetTypeUpdate, cf.changeSetInputs[0].ChangeSetType)
			},
		},
		{
			name: "replaces a stack which failed to create",
			setup: func(cf *cloudFormationServer, asm *stack.Assembly) {
				cf.putStack("Base", types.StackStatusRollbackComplete, "")
			},
			opts: DeployOptions{Stacks: []string{"Base"}},
			want: []result{{Stack: "Base", Status: types.StackStatusCreateComplete}},
			validate: func(t *testing.T, cf *cloudFormationServer, s3srv *s3Server) {
				assert := assert.New(t)
				assert.Equal([]string{"Base"}, cf.deletedStacks)
				assert.Equal(types.ChangeSetTypeCreate, cf.changeSetInputs[0].ChangeSetType)
			},
		},
		{
			name: "reports the reasons of failed resources",
			setup: func(cf *cloudFormationServer, asm *stack.Assembly) {
				cf.failures["Base"] = "Resource handler returned message: \"subnet limit exceeded\""
			},
			wantErr: "subnet limit exceeded",
			validate: func(t *testing.T, cf *cloudFormationServer, s3srv *s3Server) {
				assert := assert.New(t)
				assert.Equal(types.StackStatusRollbackComplete, cf.status("Base"))
				assert.Equal(types.StackStatus(""), cf.status("Servers"), "the dependent stack is not deployed")
			},
		},
		{
			name: "stack with an operation in progress",
			setup: func(cf *cloudFormationServer, asm *stack.Assembly) {
				cf.putStack("Base", types.StackStatusUpdateInProgress, baseTemplate)
			},
			wantErr: "is UPDATE_IN_PROGRESS, wait for the operation to finish",
		},
		{
			name:    "nested stack",
			opts:    DeployOptions{Stacks: []string{"Minecraft"}},
			wantErr: "stack Minecraft is nested in Servers",
		},
		{
			name:    "unknown stack",
			opts:    DeployOptions{Stacks: []string{"Valheim"}},
			wantErr: "no stack named Valheim",
		},
		{
			name: "deploys dependencies first",
			opts: DeployOptions{Stacks: []string{"Servers"}},
			want: []result{
				{Stack: "Base", Status: types.StackStatusCreateComplete},
				{Stack: "Servers", Status: types.StackStatusCreateComplete},
			},
		},
		{
			name: "exclusively",
			opts: DeployOptions{Stacks: []string{"Servers"}, Exclusively: true},
			want: []result{{Stack: "Servers", Status: types.StackStatusCreateComplete}},
		},
		{
			name:   "missing image does not stop the deployment",
			images: []ImageCheck{{Stack: "Servers", Repository: "minecraft", Tag: "latest"}},
			mocks: func(ecr *MockEcrClient) {
				ecr.EXPECT().DescribeImages(gomock.Any(), gomock.Any()).
					Return(nil, &ecrtypes.ImageNotFoundException{Message: aws.String("image not found")})
			},
			want: []result{
				{Stack: "Base", Status: types.StackStatusCreateComplete},
				{Stack: "Servers", Status: types.StackStatusCreateComplete},
			},
		},
		{
			name: "large templates are read from the bucket",
			setup: func(cf *cloudFormationServer, asm *stack.Assembly) {
				asm.Bodies["Base"] = []byte(`{"Description":"` + strings.Repeat("x", MAX_TEMPLATE_BODY) + `"}`)
			},
			opts: DeployOptions{Stacks: []string{"Base"}},
			want: []result{{Stack: "Base", Status: types.StackStatusCreateComplete}},
			validate: func(t *testing.T, cf *cloudFormationServer, s3srv *s3Server) {
				assert := assert.New(t)
				in := cf.changeSetInputs[0]
				assert.Nil(in.TemplateBody)
				url := aws.ToString(in.TemplateURL)
				assert.True(strings.HasPrefix(url, "https://s3.us-west-2.amazonaws.com/"+testBucket+"/"), url)
				_, ok := s3srv.object(testBucket, url[strings.LastIndex(url, "/")+1:])
				assert.True(ok)
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert := assert.New(t)
			d, cf, s3srv, ecr := testDeployer(t)
			d.Images = tt.images
			asm := testAssembly()
			if tt.setup != nil {
				tt.setup(cf, asm)
			}
			if tt.mocks != nil {
				tt.mocks(ecr)
			}

			results, err := d.Deploy(context.Background(), asm, tt.opts)
			if tt.wantErr != "" {
				assert.ErrorContains(err, tt.wantErr)
			} else if assert.NoError(err) {
				got := make([]result, 0, len(results))
				for _, r := range results {
					got = append(got, result{Stack: r.Stack, Status: types.StackStatus(r.Status), Unchanged: r.Unchanged})
				}
				assert.Equal(tt.want, got)
			}
			if tt.validate != nil {
				tt.validate(t, cf, s3srv)
			}
		})
	}
}

func TestDeployer_Deploy_Outputs(t *testing.T) {
	assert := assert.New(t)
	d, cf, _, _ := testDeployer(t)
	cf.outputs["Base"] = map[string]string{"RepositoryUri": "123456789012.dkr.ecr.us-west-2.amazonaws.com/minecraft"}

	results, err := d.Deploy(context.Background(), testAssembly(), DeployOptions{Stacks: []string{"Base"}})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(map[string]string{"RepositoryUri": "123456789012.dkr.ecr.us-west-2.amazonaws.com/minecraft"}, results[0].Outputs)

	// a second deployment of the same template keeps the outputs
	results, err = d.Deploy(context.Background(), testAssembly(), DeployOptions{Stacks: []string{"Base"}})
	require.NoError(t, err)
	assert.True(results[0].Unchanged)
	assert.Equal("123456789012.dkr.ecr.us-west-2.amazonaws.com/minecraft", results[0].Outputs["RepositoryUri"])
}

func TestDeployer_Deploy_Cancelled(t *testing.T) {
	d, _, _, _ := testDeployer(t)
	d.PollInterval = time.Hour
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := d.Deploy(ctx, testAssembly(), DeployOptions{Stacks: []string{"Base"}})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDeployer_Destroy(t *testing.T) {
	tests := []struct {
		name     string
		deployed []string
		opts     DestroyOptions
		want     []string
		wantErr  string
	}{
		{
			name:     "every stack, dependents first",
			deployed: []string{"Base", "Servers"},
			want:     []string{"Servers", "Base"},
		},
		{
			name:     "includes the stacks depending on the named one",
			deployed: []string{"Base", "Servers"},
			opts:     DestroyOptions{Stacks: []string{"Base"}},
			want:     []string{"Servers", "Base"},
		},
		{
			name:     "exclusively",
			deployed: []string{"Base", "Servers"},
			opts:     DestroyOptions{Stacks: []string{"Servers"}, Exclusively: true},
			want:     []string{"Servers"},
		},
		{
			name:     "skips stacks which are not deployed",
			deployed: []string{"Base"},
			want:     []string{"Base"},
		},
		{
			name:    "nested stack",
			opts:    DestroyOptions{Stacks: []string{"Minecraft"}},
			wantErr: "nested in Servers",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert := assert.New(t)
			d, cf, _, _ := testDeployer(t)
			for _, name := range tt.deployed {
				cf.putStack(name, types.StackStatusCreateComplete, "{}")
			}

			got, err := d.Destroy(context.Background(), testAssembly().Manifest, tt.opts)
			if tt.wantErr != "" {
				assert.ErrorContains(err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(tt.want, got)
			for _, name := range got {
				assert.Equal(types.StackStatus(""), cf.status(name))
			}
		})
	}
}

func TestDeployer_waitChangeSet_Failed(t *testing.T) {
	d, cf, _, _ := testDeployer(t)
	cf.putStack("Base", types.StackStatusCreateComplete, "{}")
	out, err := cf.CreateChangeSet(context.Background(), &cfn.CreateChangeSetInput{
		StackName:     aws.String("Base"),
		ChangeSetName: aws.String("gameservers-test"),
		ChangeSetType: types.ChangeSetTypeUpdate,
		TemplateBody:  aws.String(baseTemplate),
	})
	require.NoError(t, err)
	cs := cf.changeSets[aws.ToString(out.Id)]
	cs.next, cs.reason = types.ChangeSetStatusFailed, "Template format error: Unresolved resource dependencies [Vpc]"

	_, err = d.waitChangeSet(context.Background(), "Base", aws.ToString(out.Id))
	assert.ErrorContains(t, err, "change set failed: Template format error")
}
