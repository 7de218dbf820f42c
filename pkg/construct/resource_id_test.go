package construct

import (
	"testing"

	"github.com/pelletier/go-toml/v2"
	"github.com/stretchr/testify/assert"
)

func TestResourceId_UnmarshalText(t *testing.T) {
	tests := []struct {
		name    string
		str     string
		want    ResourceId
		wantErr bool
	}{
		{
			name: "full id",
			str:  "aws:subnet:GameServersBaseStack:MinecraftNetwork/VPC/GameServersSubnet1",
			want: ResourceId{
				Provider:  "aws",
				Type:      "subnet",
				Namespace: "GameServersBaseStack",
				Name:      "MinecraftNetwork/VPC/GameServersSubnet1",
			},
		},
		{
			name: "no namespace",
			str:  "aws:subnet:my_subnet",
			want: ResourceId{
				Provider: "aws",
				Type:     "subnet",
				Name:     "my_subnet",
			},
		},
		{
			name: "namespace with colon in name",
			str:  "aws:subnet:my_vpc:my_subnet:with:colons",
			want: ResourceId{
				Provider:  "aws",
				Type:      "subnet",
				Namespace: "my_vpc",
				Name:      "my_subnet:with:colons",
			},
		},
		{
			name: "no namespace with colon in name",
			str:  "aws:subnet::my_subnet:with:colons",
			want: ResourceId{
				Provider: "aws",
				Type:     "subnet",
				Name:     "my_subnet:with:colons",
			},
		},
		{
			name: "empty is zero id",
			str:  "",
			want: ResourceId{},
		},
		{
			name:    "too few parts",
			str:     "aws:subnet",
			wantErr: true,
		},
		{
			name:    "invalid provider",
			str:     "aws-provider:subnet:my_subnet",
			wantErr: true,
		},
		{
			name:    "invalid type",
			str:     "aws:sub$net:my_subnet",
			wantErr: true,
		},
		{
			name:    "invalid name",
			str:     "aws:subnet:my_subnet!",
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert := assert.New(t)

			var got ResourceId
			err := got.UnmarshalText([]byte(tt.str))
			if tt.wantErr {
				assert.Error(err)
				return
			}
			if !assert.NoError(err) {
				return
			}
			assert.Equal(tt.want, got)
		})
	}
}

func TestResourceId_String(t *testing.T) {
	tests := []struct {
		name string
		id   ResourceId
		want string
	}{
		{
			name: "namespaced",
			id:   ResourceId{Provider: "aws", Type: "vpc", Namespace: "base", Name: "Network/VPC"},
			want: "aws:vpc:base:Network/VPC",
		},
		{
			name: "no namespace",
			id:   ResourceId{Provider: "aws", Type: "vpc", Name: "VPC"},
			want: "aws:vpc:VPC",
		},
		{
			name: "colon in name keeps empty namespace",
			id:   ResourceId{Provider: "aws", Type: "vpc", Name: "a:b"},
			want: "aws:vpc::a:b",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert := assert.New(t)
			assert.Equal(tt.want, tt.id.String())

			var parsed ResourceId
			assert.NoError(parsed.UnmarshalText([]byte(tt.id.String())))
			assert.Equal(tt.id, parsed)
		})
	}
}

func TestResourceId_TOML(t *testing.T) {
	assert := assert.New(t)

	type doc struct {
		Target ResourceId `toml:"target"`
	}
	in := doc{Target: ResourceId{Provider: "aws", Type: "ecs_service", Namespace: "Minecraft", Name: "FargateService"}}
	b, err := toml.Marshal(in)
	if !assert.NoError(err) {
		return
	}
	assert.Contains(string(b), "aws:ecs_service:Minecraft:FargateService")

	var out doc
	if !assert.NoError(toml.Unmarshal(b, &out)) {
		return
	}
	assert.Equal(in, out)
}

func TestSortIds(t *testing.T) {
	assert := assert.New(t)

	ids := []ResourceId{
		{Provider: "aws", Type: "vpc", Name: "b"},
		{Provider: "aws", Type: "subnet", Name: "z"},
		{Provider: "aws", Type: "vpc", Namespace: "a", Name: "a"},
		{Provider: "aws", Type: "vpc", Name: "a"},
	}
	SortIds(ids)
	assert.Equal([]ResourceId{
		{Provider: "aws", Type: "subnet", Name: "z"},
		{Provider: "aws", Type: "vpc", Name: "a"},
		{Provider: "aws", Type: "vpc", Name: "b"},
		{Provider: "aws", Type: "vpc", Namespace: "a", Name: "a"},
	}, ids)
}
