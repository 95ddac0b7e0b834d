package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bitfantasy/partslib/internal/parts/entity"
	"github.com/bitfantasy/partslib/internal/parts/events"
	"github.com/bitfantasy/partslib/internal/parts/metrics"
	"github.com/bitfantasy/partslib/internal/parts/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// HierarchyService 组件层级（BOM父子关系）
//
// The edge set must stay a DAG. AddChild runs a breadth-first reachability
// check from the proposed child toward the proposed parent inside the same
// transaction as the insert.
type HierarchyService struct {
	repos  *repository.Repositories
	notify *notifier
	logger *zap.Logger
}

func NewHierarchyService(repos *repository.Repositories, notify *notifier, logger *zap.Logger) *HierarchyService {
	return &HierarchyService{repos: repos, notify: notify, logger: logger}
}

// EdgeChange is the payload of hierarchy events.
type EdgeChange struct {
	ParentID string `json:"parent_id"`
	ChildID  string `json:"child_id"`
	Quantity int    `json:"quantity,omitempty"`
}

// AddChild 添加子组件
func (s *HierarchyService) AddChild(ctx context.Context, parentID, childID string, quantity int) (*entity.ComponentComponent, error) {
	if quantity <= 0 {
		quantity = 1
	}
	var edge *entity.ComponentComponent
	err := s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		if err := requireComponents(ctx, tx, parentID, childID); err != nil {
			return err
		}
		if parentID == childID {
			return fmt.Errorf("%s -> %s: %w", parentID, childID, ErrCycle)
		}

		if _, err := tx.Hierarchy.Find(ctx, parentID, childID); err == nil {
			return fmt.Errorf("%s -> %s: %w", parentID, childID, ErrDuplicateEdge)
		} else if !errors.Is(err, repository.ErrNotFound) {
			return err
		}

		found, visited, err := reachable(ctx, tx.Hierarchy, childID, parentID)
		metrics.CycleCheckVisited.Observe(float64(visited))
		if err != nil {
			return fmt.Errorf("cycle check: %w", err)
		}
		if found {
			return fmt.Errorf("%s is already an ancestor of %s: %w", childID, parentID, ErrCycle)
		}

		edge = &entity.ComponentComponent{
			ID:        uuid.New().String(),
			ParentID:  parentID,
			ChildID:   childID,
			Quantity:  quantity,
			CreatedAt: time.Now(),
		}
		if err := tx.Hierarchy.Create(ctx, edge); err != nil {
			if errors.Is(err, repository.ErrDuplicateKey) {
				return fmt.Errorf("%s -> %s: %w", parentID, childID, ErrDuplicateEdge)
			}
			return err
		}
		return nil
	})
	if err != nil {
		metrics.HierarchyMutations.WithLabelValues("add", resultLabel(err)).Inc()
		return nil, err
	}

	metrics.HierarchyMutations.WithLabelValues("add", "ok").Inc()
	s.notify.emit(ctx, events.HierarchyAdded, EdgeChange{ParentID: parentID, ChildID: childID, Quantity: quantity})
	return edge, nil
}

// RemoveChild 移除子组件
func (s *HierarchyService) RemoveChild(ctx context.Context, parentID, childID string) error {
	rows, err := s.repos.Hierarchy.Delete(ctx, parentID, childID)
	if err != nil {
		metrics.HierarchyMutations.WithLabelValues("remove", "error").Inc()
		return err
	}
	if rows == 0 {
		metrics.HierarchyMutations.WithLabelValues("remove", "not_found").Inc()
		return fmt.Errorf("%s -> %s: %w", parentID, childID, ErrEdgeNotFound)
	}
	metrics.HierarchyMutations.WithLabelValues("remove", "ok").Inc()
	s.notify.emit(ctx, events.HierarchyRemoved, EdgeChange{ParentID: parentID, ChildID: childID})
	return nil
}

// SetQuantity 修改用量
func (s *HierarchyService) SetQuantity(ctx context.Context, parentID, childID string, quantity int) error {
	if quantity <= 0 {
		return fieldError("quantity", "must be > 0")
	}
	if err := s.repos.Hierarchy.UpdateQuantity(ctx, parentID, childID, quantity); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("%s -> %s: %w", parentID, childID, ErrEdgeNotFound)
		}
		return err
	}
	return nil
}

// Children 直接子组件
func (s *HierarchyService) Children(ctx context.Context, componentID string, includeArchived bool) ([]entity.ComponentComponent, error) {
	if err := requireComponents(ctx, s.repos, componentID); err != nil {
		return nil, err
	}
	return s.repos.Hierarchy.ListChildren(ctx, componentID, includeArchived)
}

// Parents 直接父组件（where-used）
func (s *HierarchyService) Parents(ctx context.Context, componentID string, includeArchived bool) ([]entity.ComponentComponent, error) {
	if err := requireComponents(ctx, s.repos, componentID); err != nil {
		return nil, err
	}
	return s.repos.Hierarchy.ListParents(ctx, componentID, includeArchived)
}

// TreeNode is one component in an expanded sub-component tree.
type TreeNode struct {
	ID       string      `json:"id"`
	Number   string      `json:"number"`
	Name     string      `json:"name"`
	Quantity int         `json:"quantity"`
	Archived bool        `json:"archived"`
	Children []*TreeNode `json:"children"`
}

// Tree expands the DAG below rootID into a tree. Shared sub-assemblies appear
// once under every parent that uses them.
func (s *HierarchyService) Tree(ctx context.Context, rootID string, includeArchived bool) (*TreeNode, error) {
	root, err := s.repos.Component.FindByID(ctx, rootID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFound("component", rootID)
		}
		return nil, err
	}
	node := &TreeNode{ID: root.ID, Number: root.Number, Name: root.Name, Quantity: 1, Archived: root.Archived}
	if err := s.expand(ctx, node, includeArchived, map[string]bool{root.ID: true}); err != nil {
		return nil, err
	}
	return node, nil
}

func (s *HierarchyService) expand(ctx context.Context, node *TreeNode, includeArchived bool, path map[string]bool) error {
	edges, err := s.repos.Hierarchy.ListChildren(ctx, node.ID, includeArchived)
	if err != nil {
		return err
	}
	node.Children = make([]*TreeNode, 0, len(edges))
	for _, e := range edges {
		if e.Child == nil {
			continue
		}
		if path[e.ChildID] {
			s.logger.Error("Cycle found in stored hierarchy", zap.String("parent_id", node.ID), zap.String("child_id", e.ChildID))
			return fmt.Errorf("stored edge %s -> %s: %w", node.ID, e.ChildID, ErrCycle)
		}
		child := &TreeNode{
			ID:       e.Child.ID,
			Number:   e.Child.Number,
			Name:     e.Child.Name,
			Quantity: e.Quantity,
			Archived: e.Child.Archived,
		}
		path[e.ChildID] = true
		if err := s.expand(ctx, child, includeArchived, path); err != nil {
			return err
		}
		delete(path, e.ChildID)
		node.Children = append(node.Children, child)
	}
	return nil
}

// reachable reports whether target can be reached from start by following
// parent -> child edges, and how many components were visited.
func reachable(ctx context.Context, edges *repository.HierarchyRepository, start, target string) (bool, int, error) {
	visited := map[string]struct{}{start: {}}
	frontier := []string{start}
	for len(frontier) > 0 {
		next, err := edges.ChildIDs(ctx, frontier)
		if err != nil {
			return false, len(visited), err
		}
		frontier = nil
		for _, id := range next {
			if id == target {
				return true, len(visited), nil
			}
			if _, seen := visited[id]; seen {
				continue
			}
			visited[id] = struct{}{}
			frontier = append(frontier, id)
		}
	}
	return false, len(visited), nil
}

// requireComponents returns a not-found error for the first id without a row.
func requireComponents(ctx context.Context, repos *repository.Repositories, ids ...string) error {
	for _, id := range ids {
		ok, err := repos.Component.Exists(ctx, id)
		if err != nil {
			return err
		}
		if !ok {
			return notFound("component", id)
		}
	}
	return nil
}

func resultLabel(err error) string {
	switch {
	case errors.Is(err, ErrCycle):
		return "cycle"
	case errors.Is(err, ErrDuplicateEdge):
		return "duplicate"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	default:
		return "error"
	}
}
