package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestFunction builds a minimal single-block function whose entry
// block ends with ret 0, so tests can append instructions before the
// terminator and call Optimize on something structurally valid.
func newTestFunction(name string) (*Function, *BasicBlock) {
	b := &BasicBlock{Label: "entry"}
	fn := &Function{Name: name, Param: &Param{Name: "p"}, Blocks: []*BasicBlock{b}}
	ret := &Ret{Value: &Const{Value: 0}}
	ret.SetBlock(b)
	b.Terminator = ret
	return fn, b
}

func appendInst(b *BasicBlock, inst Instruction) {
	inst.SetBlock(b)
	b.Instructions = append(b.Instructions, inst)
}

func TestFoldConstantsWiredIntoReturn(t *testing.T) {
	fn, b := newTestFunction("f")
	add := &BinArith{Op: ArithAdd, LHS: &Const{Value: 2}, RHS: &Const{Value: 3}}
	add.SetBlock(b)
	b.Instructions = append(b.Instructions, add)
	b.Terminator = &Ret{Value: add}
	b.Terminator.SetBlock(b)
	fn.Blocks = []*BasicBlock{b}

	foldConstants(b)
	dce(b)

	ret := b.Terminator.(*Ret)
	c, ok := ret.Value.(*Const)
	require.True(t, ok)
	assert.Equal(t, int32(5), c.Value)
	assert.Empty(t, b.Instructions)
}

func TestFoldConstantsNeverFoldsSDiv(t *testing.T) {
	fn, b := newTestFunction("f")
	div := &BinArith{Op: ArithSDiv, LHS: &Const{Value: 10}, RHS: &Const{Value: 2}}
	div.SetBlock(b)
	b.Instructions = []Instruction{div}
	b.Terminator = &Ret{Value: div}
	b.Terminator.SetBlock(b)
	fn.Blocks = []*BasicBlock{b}

	changed := foldConstants(b)
	assert.False(t, changed)
	assert.IsType(t, &BinArith{}, b.Instructions[0])
}

func TestCSEUnifiesDuplicateArithmetic(t *testing.T) {
	fn, b := newTestFunction("f")
	p := fn.Param
	a1 := &BinArith{Op: ArithAdd, LHS: p, RHS: p}
	a2 := &BinArith{Op: ArithAdd, LHS: p, RHS: p}
	appendInst(b, a1)
	appendInst(b, a2)
	b.Terminator = &Ret{Value: a2}
	b.Terminator.SetBlock(b)

	changed := cse(b)
	require.True(t, changed)
	assert.Equal(t, Operand(a1), b.Terminator.(*Ret).Value)
}

func TestCSEDoesNotUnifyLoadsAcrossIntermediateStore(t *testing.T) {
	fn, b := newTestFunction("f")
	_ = fn
	alloc := &Alloca{Name: "x"}
	appendInst(b, alloc)
	l1 := &Load{Src: alloc}
	appendInst(b, l1)
	st := &Store{Value: &Const{Value: 1}, Dst: alloc}
	appendInst(b, st)
	l2 := &Load{Src: alloc}
	appendInst(b, l2)
	b.Terminator = &Ret{Value: l2}
	b.Terminator.SetBlock(b)

	changed := cse(b)
	assert.False(t, changed)
	assert.Equal(t, Operand(l2), b.Terminator.(*Ret).Value)
}

func TestCSEUnifiesLoadsWithoutInterveningStore(t *testing.T) {
	fn, b := newTestFunction("f")
	_ = fn
	alloc := &Alloca{Name: "x"}
	appendInst(b, alloc)
	l1 := &Load{Src: alloc}
	appendInst(b, l1)
	l2 := &Load{Src: alloc}
	appendInst(b, l2)
	b.Terminator = &Ret{Value: l2}
	b.Terminator.SetBlock(b)

	changed := cse(b)
	require.True(t, changed)
	assert.Equal(t, Operand(l1), b.Terminator.(*Ret).Value)
}

func TestCSEExcludesCalls(t *testing.T) {
	fn, b := newTestFunction("f")
	_ = fn
	c1 := &Call{Callee: "read"}
	c2 := &Call{Callee: "read"}
	appendInst(b, c1)
	appendInst(b, c2)
	b.Terminator = &Ret{Value: c2}
	b.Terminator.SetBlock(b)

	changed := cse(b)
	assert.False(t, changed)
}

func TestDCERemovesUnusedLoad(t *testing.T) {
	fn, b := newTestFunction("f")
	_ = fn
	alloc := &Alloca{Name: "x"}
	appendInst(b, alloc)
	st := &Store{Value: &Const{Value: 1}, Dst: alloc}
	appendInst(b, st)
	dead := &Load{Src: alloc}
	appendInst(b, dead)

	changed := dce(b)
	require.True(t, changed)
	for _, inst := range b.Instructions {
		assert.NotEqual(t, dead, inst)
	}
	// Store, Alloca survive because they're always essential.
	assert.Len(t, b.Instructions, 2)
}

func TestDCEKeepsCallEvenWithoutUses(t *testing.T) {
	fn, b := newTestFunction("f")
	_ = fn
	call := &Call{Callee: "print", Args: []Operand{&Const{Value: 1}}}
	appendInst(b, call)

	changed := dce(b)
	assert.False(t, changed)
	assert.Len(t, b.Instructions, 1)
}

func TestConstantPropagationSingleBlock(t *testing.T) {
	fn, b := newTestFunction("f")
	alloc := &Alloca{Name: "x"}
	appendInst(b, alloc)
	st := &Store{Value: &Const{Value: 41}, Dst: alloc}
	appendInst(b, st)
	ld := &Load{Src: alloc}
	appendInst(b, ld)
	b.Terminator = &Ret{Value: ld}
	b.Terminator.SetBlock(b)

	Optimize(fn)

	ret := b.Terminator.(*Ret)
	c, ok := ret.Value.(*Const)
	require.True(t, ok)
	assert.Equal(t, int32(41), c.Value)
}

func TestConstantPropagationAcrossBlocksWhenValuesAgree(t *testing.T) {
	entry := &BasicBlock{Label: "entry"}
	thenB := &BasicBlock{Label: "then"}
	elseB := &BasicBlock{Label: "else"}
	join := &BasicBlock{Label: "join"}
	fn := &Function{Name: "f", Param: &Param{Name: "p"}, Blocks: []*BasicBlock{entry, thenB, elseB, join}}

	alloc := &Alloca{Name: "x"}
	appendInst(entry, alloc)
	icmp := &ICmp{Pred: CmpSLT, LHS: fn.Param, RHS: &Const{Value: 0}}
	appendInst(entry, icmp)
	entry.Terminator = &CondBr{Cond: icmp, Then: thenB, Else: elseB}
	entry.Terminator.SetBlock(entry)

	stThen := &Store{Value: &Const{Value: 7}, Dst: alloc}
	appendInst(thenB, stThen)
	thenB.Terminator = &Br{Target: join}
	thenB.Terminator.SetBlock(thenB)

	stElse := &Store{Value: &Const{Value: 7}, Dst: alloc}
	appendInst(elseB, stElse)
	elseB.Terminator = &Br{Target: join}
	elseB.Terminator.SetBlock(elseB)

	ld := &Load{Src: alloc}
	appendInst(join, ld)
	join.Terminator = &Ret{Value: ld}
	join.Terminator.SetBlock(join)

	Optimize(fn)

	ret := join.Terminator.(*Ret)
	c, ok := ret.Value.(*Const)
	require.True(t, ok)
	assert.Equal(t, int32(7), c.Value)
}

func TestConstantPropagationDoesNotMergeDisagreeingValues(t *testing.T) {
	entry := &BasicBlock{Label: "entry"}
	thenB := &BasicBlock{Label: "then"}
	elseB := &BasicBlock{Label: "else"}
	join := &BasicBlock{Label: "join"}
	fn := &Function{Name: "f", Param: &Param{Name: "p"}, Blocks: []*BasicBlock{entry, thenB, elseB, join}}

	alloc := &Alloca{Name: "x"}
	appendInst(entry, alloc)
	icmp := &ICmp{Pred: CmpSLT, LHS: fn.Param, RHS: &Const{Value: 0}}
	appendInst(entry, icmp)
	entry.Terminator = &CondBr{Cond: icmp, Then: thenB, Else: elseB}
	entry.Terminator.SetBlock(entry)

	stThen := &Store{Value: &Const{Value: 7}, Dst: alloc}
	appendInst(thenB, stThen)
	thenB.Terminator = &Br{Target: join}
	thenB.Terminator.SetBlock(thenB)

	stElse := &Store{Value: &Const{Value: 8}, Dst: alloc}
	appendInst(elseB, stElse)
	elseB.Terminator = &Br{Target: join}
	elseB.Terminator.SetBlock(elseB)

	ld := &Load{Src: alloc}
	appendInst(join, ld)
	join.Terminator = &Ret{Value: ld}
	join.Terminator.SetBlock(join)

	Optimize(fn)

	ret := join.Terminator.(*Ret)
	assert.Equal(t, Operand(ld), ret.Value)
	require.Len(t, join.Instructions, 1)
	assert.Equal(t, Instruction(ld), join.Instructions[0])
}

func TestOptimizeFixpointFoldsThroughPropagatedLoad(t *testing.T) {
	fn, b := newTestFunction("f")
	alloc := &Alloca{Name: "x"}
	appendInst(b, alloc)
	st := &Store{Value: &Const{Value: 4}, Dst: alloc}
	appendInst(b, st)
	ld := &Load{Src: alloc}
	appendInst(b, ld)
	add := &BinArith{Op: ArithAdd, LHS: ld, RHS: &Const{Value: 1}}
	appendInst(b, add)
	b.Terminator = &Ret{Value: add}
	b.Terminator.SetBlock(b)

	Optimize(fn)

	ret := b.Terminator.(*Ret)
	c, ok := ret.Value.(*Const)
	require.True(t, ok)
	assert.Equal(t, int32(5), c.Value)
	// alloc and its store survive DCE (§4.D.3 never removes Alloca/Store);
	// only the now-dead load and add are gone.
	require.Len(t, b.Instructions, 2)
	assert.IsType(t, &Alloca{}, b.Instructions[0])
	assert.IsType(t, &Store{}, b.Instructions[1])
}
