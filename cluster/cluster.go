package cluster

import (
	"fmt"
	"sort"

	cm "github.com/gasparian/crypto-recommend-go/common"
)

// Cluster is a named group of vector refs
type Cluster struct {
	id      int
	name    string
	members []int
}

// ID returns position of the cluster inside its partition
func (c *Cluster) ID() int {
	return c.id
}

// Name returns cluster name
func (c *Cluster) Name() string {
	return c.name
}

// Len returns number of members
func (c *Cluster) Len() int {
	return len(c.members)
}

// Members returns member refs in ascending order
func (c *Cluster) Members() []int {
	res := make([]int, len(c.members))
	copy(res, c.members)
	return res
}

// Partition holds the clusters of a run; every ref belongs to at most one cluster
type Partition struct {
	clusters []*Cluster
	of       map[int]*Cluster
}

// NewPartition creates partition from groups of refs formed by an
// external clustering pass; empty groups are dropped
func NewPartition(groups [][]int) (*Partition, error) {
	p := &Partition{
		clusters: make([]*Cluster, 0, len(groups)),
		of:       make(map[int]*Cluster),
	}
	for _, group := range groups {
		if len(group) == 0 {
			continue
		}
		c := &Cluster{
			id:      len(p.clusters),
			name:    fmt.Sprintf("cluster-%d", len(p.clusters)),
			members: make([]int, len(group)),
		}
		copy(c.members, group)
		sort.Ints(c.members)
		for _, ref := range c.members {
			if _, has := p.of[ref]; has {
				return nil, fmt.Errorf("%w: ref %d belongs to more than one cluster", cm.ErrInvalidArgument, ref)
			}
			p.of[ref] = c
		}
		p.clusters = append(p.clusters, c)
	}
	return p, nil
}

// Len returns number of clusters
func (p *Partition) Len() int {
	return len(p.clusters)
}

// Clusters returns all clusters
func (p *Partition) Clusters() []*Cluster {
	res := make([]*Cluster, len(p.clusters))
	copy(res, p.clusters)
	return res
}

// Of returns cluster of the ref
func (p *Partition) Of(ref int) (*Cluster, bool) {
	c, ok := p.of[ref]
	return c, ok
}

// Peers returns the other members of the ref's cluster, in member order
func (p *Partition) Peers(ref int) []int {
	c, ok := p.of[ref]
	if !ok {
		return []int{}
	}
	peers := make([]int, 0, len(c.members)-1)
	for _, m := range c.members {
		if m != ref {
			peers = append(peers, m)
		}
	}
	return peers
}
