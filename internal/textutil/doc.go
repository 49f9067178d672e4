// Package textutil turns video titles into names that are safe to use on disk.
package textutil
