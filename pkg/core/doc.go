// Package core defines the shared language of the leappage system.
//
// This package contains:
//   - Domain entities (BlockDescriptor, BlockData, Page, Component)
//   - Service interfaces (DescriptorResolver, PageStore, BlockModel, BlockController)
//   - The render session (RenderContext, Mode, Request)
//   - The error taxonomy shared by the renderer and its collaborators
//
// The Golden Rule: pkg/core imports ONLY stdlib.
// All other packages depend on core, not the reverse.
package core
