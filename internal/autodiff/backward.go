package autodiff

import (
	"github.com/pkg/errors"
	"k8s.io/klog/v2"

	"github.com/m0saan/minima/internal/ndarray"
)

// TopologicalSort returns every node reachable from root exactly once,
// parents first: root comes first and each node precedes all of its inputs.
// Nodes are deduplicated by identity, not by value.
func TopologicalSort(root *Tensor) []*Tensor {
	type frame struct {
		node *Tensor
		next int
	}
	visited := map[*Tensor]bool{root: true}
	var postOrder []*Tensor
	stack := []frame{{node: root}}
	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		if top.next < len(top.node.inputs) {
			in := top.node.inputs[top.next]
			top.next++
			if !visited[in] {
				visited[in] = true
				stack = append(stack, frame{node: in})
			}
			continue
		}
		postOrder = append(postOrder, top.node)
		stack = stack[:len(stack)-1]
	}
	for i, j := 0, len(postOrder)-1; i < j; i, j = i+1, j-1 {
		postOrder[i], postOrder[j] = postOrder[j], postOrder[i]
	}
	return postOrder
}

// Backward runs reverse-mode differentiation from root.
//
// The root is seeded with grad, or with ones of root's shape when grad is
// nil. Every node reachable from root then gets the sum of the gradients
// flowing into it stored in Grad, replacing whatever a previous pass left
// there. Nodes that do not require gradients receive their gradient but do
// not propagate it further.
//
// On error the gradients already stored are partial and should be discarded.
func Backward(root, grad *Tensor) error {
	rootShape, err := root.Shape()
	if err != nil {
		return err
	}
	if grad == nil {
		if grad, err = root.ctx.Ones(rootShape, WithRequiresGrad(false)); err != nil {
			return err
		}
	} else {
		gradShape, err := grad.Shape()
		if err != nil {
			return err
		}
		if !gradShape.Equal(rootShape) {
			return errors.Wrapf(ndarray.ErrShapeMismatch, "backward: gradient shape %v does not match output %v", gradShape, rootShape)
		}
	}

	order := TopologicalSort(root)
	klog.V(2).Infof("autodiff: backward from tensor %d over %d nodes", root.id, len(order))

	pending := map[*Tensor][]*Tensor{root: {grad}}
	for _, node := range order {
		contributions := pending[node]
		delete(pending, node)
		if len(contributions) == 0 {
			continue
		}
		total := contributions[0]
		for _, c := range contributions[1:] {
			if total, err = total.Add(c); err != nil {
				return errors.WithMessagef(err, "backward: accumulating gradient of tensor %d", node.id)
			}
		}
		node.grad = total

		if node.op == nil || !node.requiresGrad {
			continue
		}
		inputGrads, err := gradient(node.op, total, node)
		if err != nil {
			return errors.WithMessagef(err, "backward: gradient of tensor %d (%s)", node.id, node.op)
		}
		if len(inputGrads) != len(node.inputs) {
			return errors.Wrapf(ErrInvalidOperatorUse, "backward: %s returned %d gradients for %d inputs",
				node.op, len(inputGrads), len(node.inputs))
		}
		for i, in := range node.inputs {
			if err := checkGradShape(in, inputGrads[i]); err != nil {
				return errors.WithMessagef(err, "backward: input %d of tensor %d (%s)", i, node.id, node.op)
			}
			pending[in] = append(pending[in], inputGrads[i])
		}
		klog.V(3).Infof("autodiff: propagated %s gradient of tensor %d to %d inputs", node.op, node.id, len(node.inputs))
	}
	return nil
}

// Backward is shorthand for Backward(t, grad).
func (t *Tensor) Backward(grad *Tensor) error {
	return Backward(t, grad)
}

func checkGradShape(in, g *Tensor) error {
	want, err := in.Shape()
	if err != nil {
		return err
	}
	got, err := g.Shape()
	if err != nil {
		return err
	}
	if !got.Equal(want) {
		return errors.Wrapf(ndarray.ErrShapeMismatch, "gradient shape %v does not match input shape %v", got, want)
	}
	return nil
}
