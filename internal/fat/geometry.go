// SPDX-FileCopyrightText: 2024 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package fat

import "fmt"

const (
	sectorSize      = 512
	reservedSectors = 1
	numFATs         = 2
	rootEntryCount  = 512
	dirEntrySize    = 32
	rootDirSectors  = rootEntryCount * dirEntrySize / sectorSize

	// Cluster count limits that make a volume FAT16.
	minClusters = 4085
	maxClusters = 65524

	maxSectorsPerCluster = 64

	// Any FAT16 volume is smaller than this.
	maxImageSize = 4 << 30

	// Slack is the free space added on top of the content.
	Slack = 512 << 10

	// SizeAlignment is the granularity of image sizes. It is a multiple of
	// every possible cluster size.
	SizeAlignment = 1 << 20
)

type geometry struct {
	totalSectors      uint32
	sectorsPerCluster uint32
	fatSectors        uint32
	clusters          uint32
}

// newGeometry lays out a volume of the given size. The FAT size is calculated
// as described in the Microsoft FAT specification.
func newGeometry(size int64, sectorsPerCluster uint32) geometry {
	totalSectors := uint32(size / sectorSize)
	usable := totalSectors - reservedSectors - rootDirSectors
	perFATSector := 256*sectorsPerCluster + numFATs
	fatSectors := (usable + perFATSector - 1) / perFATSector
	clusters := (usable - numFATs*fatSectors) / sectorsPerCluster

	// Each FAT must hold an entry for every cluster plus the two reserved
	// ones.
	clusters = min(clusters, fatSectors*sectorSize/2-2)

	return geometry{
		totalSectors:      totalSectors,
		sectorsPerCluster: sectorsPerCluster,
		fatSectors:        fatSectors,
		clusters:          clusters,
	}
}

// computeGeometry returns the geometry of the smallest volume that holds the
// number of clusters returned by needFn for a cluster size, and is at least
// minSize large.
//
// Smaller cluster sizes are preferred. A cluster size is skipped if the volume
// would have more clusters than FAT16 allows.
func computeGeometry(
	needFn func(clusterSize int64) uint64,
	minSize int64,
) (geometry, error) {
	if minSize > maxImageSize {
		return geometry{}, fmt.Errorf(
			"%w: minimum size %d bytes",
			ErrImageTooLarge,
			minSize,
		)
	}

	for spc := uint32(1); spc <= maxSectorsPerCluster; spc *= 2 {
		clusterSize := int64(spc) * sectorSize

		needed := needFn(clusterSize)
		if needed > maxClusters {
			continue
		}

		fatBytes := alignUp(int64(needed+2)*2, sectorSize)
		metadata := (reservedSectors+rootDirSectors)*sectorSize +
			numFATs*fatBytes
		size := max(
			alignUp(metadata+int64(needed)*clusterSize+Slack, SizeAlignment),
			alignUp(minSize, SizeAlignment),
		)

		for {
			geo := newGeometry(size, spc)
			if geo.clusters > maxClusters {
				break
			}

			if geo.clusters >= minClusters && uint64(geo.clusters) >= needed {
				return geo, nil
			}

			size += SizeAlignment
		}
	}

	return geometry{}, fmt.Errorf(
		"%w: minimum size %d bytes",
		ErrImageTooLarge,
		minSize,
	)
}

func (g geometry) size() int64 {
	return int64(g.totalSectors) * sectorSize
}

func (g geometry) clusterSize() int64 {
	return int64(g.sectorsPerCluster) * sectorSize
}

func (g geometry) fatOffset(idx uint32) int64 {
	return int64(reservedSectors+idx*g.fatSectors) * sectorSize
}

func (g geometry) rootDirOffset() int64 {
	return g.fatOffset(numFATs)
}

func (g geometry) firstDataSector() uint32 {
	return reservedSectors + numFATs*g.fatSectors + rootDirSectors
}

// clusterOffset returns the byte offset of the given cluster. Data clusters
// start at index 2.
func (g geometry) clusterOffset(cluster uint32) int64 {
	sector := g.firstDataSector() + (cluster-2)*g.sectorsPerCluster
	return int64(sector) * sectorSize
}

func alignUp(value, alignment int64) int64 {
	return (value + alignment - 1) / alignment * alignment
}

func ceilDiv(value, divisor int64) uint64 {
	return uint64((value + divisor - 1) / divisor)
}
