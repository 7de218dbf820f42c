package resources

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/talves/gameservers/pkg/construct"
)

func Test_EcsTaskDefinition_Validate(t *testing.T) {
	fs := &EfsFileSystem{Name: "Minecraft"}
	cases := []struct {
		name    string
		volumes []Volume
		mounts  []MountPoint
		ports   []PortMapping
		wantErr string
	}{
		{
			name:    "mount with volume",
			volumes: []Volume{{Name: "Minecraft", FileSystem: fs}},
			mounts:  []MountPoint{{SourceVolume: "Minecraft", ContainerPath: "/mnt/minecraft"}},
			ports:   []PortMapping{{ContainerPort: 25565, HostPort: 25565, Protocol: ProtocolTCP}},
		},
		{
			name:    "mount without volume",
			mounts:  []MountPoint{{SourceVolume: "Minecraft", ContainerPath: "/mnt/minecraft"}},
			wantErr: `mounts volume "Minecraft"`,
		},
		{
			name: "duplicate port mapping",
			ports: []PortMapping{
				{ContainerPort: 8443, HostPort: 8443, Protocol: ProtocolTCP},
				{ContainerPort: 8443, HostPort: 8443, Protocol: ProtocolTCP},
			},
			wantErr: "maps port 8443/tcp more than once",
		},
	}
	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			assert := assert.New(t)

			td := &EcsTaskDefinition{Name: "TaskDefinition", Family: "Minecraft", Volumes: tt.volumes}
			c := td.AddContainer(&ContainerDefinition{ContainerName: "Minecraft"})
			c.AddMountPoints(tt.mounts...)
			c.AddPortMappings(tt.ports...)

			err := td.Validate()
			if tt.wantErr != "" {
				assert.ErrorContains(err, tt.wantErr)
				return
			}
			assert.NoError(err)
			assert.Same(c, td.Container("Minecraft"))
		})
	}
}

func Test_ContainerImages(t *testing.T) {
	repo := &EcrRepository{Name: "MinecraftRepository", Namespace: "GameServersBaseStack", RepositoryName: "minecraft"}

	cases := []struct {
		name     string
		image    ContainerImage
		want     construct.Value
		wantRepo *EcrRepository
	}{
		{
			name:  "registry",
			image: ImageFromRegistry("itzg/minecraft-server"),
			want:  construct.Literal("itzg/minecraft-server"),
		},
		{
			name:  "repository defaults tag",
			image: ImageFromEcrRepository(repo, ""),
			want: construct.Format("${Uri}:latest", map[string]construct.IaCValue{
				"Uri": {ResourceId: repo.Id(), Property: URI_IAC_VALUE},
			}),
			wantRepo: repo,
		},
		{
			name:  "repository name",
			image: ImageFromRepositoryName("Minecraft", "1.20"),
			want:  construct.Format("${AWS::AccountId}.dkr.ecr.${AWS::Region}.${AWS::URLSuffix}/minecraft:1.20", nil),
		},
	}
	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			assert := assert.New(t)
			assert.Equal(tt.want, tt.image.Image)
			assert.Equal(tt.wantRepo, tt.image.Repository)
		})
	}
}

func Test_EcsNames(t *testing.T) {
	assert := assert.New(t)

	s := &EcsService{}
	s.SetServiceName("Minecraft Server")
	assert.Equal("MinecraftServer", s.ServiceName)

	c := &EcsCluster{}
	c.SetClusterName("Minecraft")
	assert.Equal("Minecraft", c.ClusterName)
}
